// Package ticker simulates a market data feed for coin lookups. Prices are
// keyed by coin address, seeded deterministically on first sight and walked
// randomly afterwards.
package ticker

import (
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PriceUpdate is a single price observation for a coin address.
type PriceUpdate struct {
	Address string  `json:"address"`
	Price   float64 `json:"price"`
	Ts      int64   `json:"ts"` // Unix timestamp milliseconds
}

// Feed tracks prices for the coin addresses users have looked up.
type Feed struct {
	mu     sync.RWMutex
	prices map[string]float64

	// Updates carries one entry per tracked address per tick.
	Updates chan PriceUpdate

	interval time.Duration
	stop     chan struct{}
	log      *zap.Logger
}

// NewFeed creates a feed that re-prices every interval once started.
func NewFeed(interval time.Duration, log *zap.Logger) *Feed {
	return &Feed{
		prices:   make(map[string]float64),
		Updates:  make(chan PriceUpdate, 100),
		interval: interval,
		stop:     make(chan struct{}),
		log:      log,
	}
}

// Start launches the background re-pricing loop.
func (f *Feed) Start() {
	f.log.Info("starting price feed", zap.Duration("interval", f.interval))
	go f.run()
}

// Stop terminates the re-pricing loop.
func (f *Feed) Stop() {
	close(f.stop)
}

func (f *Feed) run() {
	t := time.NewTicker(f.interval)
	defer t.Stop()

	for {
		select {
		case <-f.stop:
			return
		case <-t.C:
			f.tick()
		}
	}
}

func (f *Feed) tick() {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now().UnixMilli()
	for address, old := range f.prices {
		// Simulate a small price change (+/- 0.5%).
		changePercent := (rand.Float64() - 0.5) / 100
		price := old * (1 + changePercent)
		if price <= 0 {
			price = old
		}
		f.prices[address] = price

		// Non-blocking send so a slow consumer never stalls the feed.
		select {
		case f.Updates <- PriceUpdate{Address: address, Price: price, Ts: now}:
		default:
			f.log.Debug("price update channel full, dropping update", zap.String("address", address))
		}
	}
}

// Price returns the current price for address, seeding it on first lookup.
// Seeding hashes the address so the same coin always starts at the same
// price within a process.
func (f *Feed) Price(address string) float64 {
	f.mu.RLock()
	price, ok := f.prices[address]
	f.mu.RUnlock()
	if ok {
		return price
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if price, ok = f.prices[address]; ok {
		return price
	}

	price = seedPrice(address)
	f.prices[address] = price
	return price
}

// seedPrice maps an address into (0.000001, 10] TON.
func seedPrice(address string) float64 {
	h := fnv.New64a()
	h.Write([]byte(address))
	return float64(h.Sum64()%10_000_000+1) / 1_000_000
}
