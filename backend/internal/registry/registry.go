// Package registry holds the per-user wallet collections. It is the only
// component with process-lifetime mutable state; everything is lost on
// restart by design.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/user/tonpilot/backend/internal/models"
)

var (
	// ErrIndexOutOfRange marks a stale or tampered wallet index.
	ErrIndexOutOfRange = errors.New("wallet index out of range")
	// ErrInvalidInput marks malformed caller-supplied wallet data.
	ErrInvalidInput = errors.New("invalid input")
)

// Generator is the external key-generation collaborator.
type Generator interface {
	Generate(ctx context.Context) (address, secret string, err error)
}

// userEntry is one user's ordered wallet sequence plus its lock.
// gone is set when the entry has been removed from the map, so a goroutine
// holding a stale pointer can detect the removal and retry.
type userEntry struct {
	mu      sync.RWMutex
	wallets []*models.Wallet
	gone    bool
}

// Registry maps user ids to wallet sequences. Mutations on one user are
// mutually exclusive; operations on distinct users proceed independently.
type Registry struct {
	mu    sync.RWMutex
	users map[string]*userEntry
	gen   Generator
	log   *zap.Logger
}

// New creates an empty registry using gen for wallet key material.
func New(gen Generator, log *zap.Logger) *Registry {
	return &Registry{
		users: make(map[string]*userEntry),
		gen:   gen,
		log:   log,
	}
}

// lockUser returns the user's entry write-locked. When create is false and
// the user is unknown it returns nil. The double-checked create mirrors
// GetOrCreateBook-style map population.
func (r *Registry) lockUser(userID string, create bool) *userEntry {
	for {
		r.mu.RLock()
		e := r.users[userID]
		r.mu.RUnlock()

		if e == nil {
			if !create {
				return nil
			}
			r.mu.Lock()
			if e = r.users[userID]; e == nil {
				e = &userEntry{}
				r.users[userID] = e
			}
			r.mu.Unlock()
		}

		e.mu.Lock()
		if e.gone {
			// Entry was deleted between lookup and lock; retry.
			e.mu.Unlock()
			continue
		}
		return e
	}
}

// rlockUser returns the user's entry read-locked, or nil if unknown.
func (r *Registry) rlockUser(userID string) *userEntry {
	for {
		r.mu.RLock()
		e := r.users[userID]
		r.mu.RUnlock()

		if e == nil {
			return nil
		}
		e.mu.RLock()
		if e.gone {
			e.mu.RUnlock()
			continue
		}
		return e
	}
}

// CreateWallet generates a fresh wallet and appends it to the user's
// sequence. The collaborator call happens before any lock is taken, so a
// failed or cancelled generation leaves the registry untouched.
func (r *Registry) CreateWallet(ctx context.Context, userID string) (int, models.Wallet, error) {
	address, secret, err := r.gen.Generate(ctx)
	if err != nil {
		return 0, models.Wallet{}, err
	}

	w := &models.Wallet{
		Address:   address,
		Secret:    secret,
		Positions: make(map[string]decimal.Decimal),
		CreatedAt: time.Now(),
	}

	e := r.lockUser(userID, true)
	e.wallets = append(e.wallets, w)
	index := len(e.wallets) - 1
	e.mu.Unlock()

	r.log.Info("wallet created",
		zap.String("user", userID), zap.Int("index", index), zap.String("address", address))
	return index, w.Clone(), nil
}

// ConnectWallet appends a wallet with caller-supplied key material. The
// address format is not validated here; the settlement service rejects bad
// addresses at use time.
func (r *Registry) ConnectWallet(userID, address, secret string) (int, models.Wallet, error) {
	if address == "" || secret == "" {
		return 0, models.Wallet{}, fmt.Errorf("%w: address and secret are required", ErrInvalidInput)
	}

	w := &models.Wallet{
		Address:   address,
		Secret:    secret,
		Positions: make(map[string]decimal.Decimal),
		CreatedAt: time.Now(),
	}

	e := r.lockUser(userID, true)
	e.wallets = append(e.wallets, w)
	index := len(e.wallets) - 1
	e.mu.Unlock()

	r.log.Info("wallet connected",
		zap.String("user", userID), zap.Int("index", index), zap.String("address", address))
	return index, w.Clone(), nil
}

// ListWallets returns a snapshot of the user's wallets in creation order.
// Unknown users get an empty slice, not nil.
func (r *Registry) ListWallets(userID string) []models.Wallet {
	e := r.rlockUser(userID)
	if e == nil {
		return make([]models.Wallet, 0)
	}
	defer e.mu.RUnlock()

	out := make([]models.Wallet, 0, len(e.wallets))
	for _, w := range e.wallets {
		out = append(out, w.Clone())
	}
	return out
}

// Count returns the number of wallets the user currently holds.
func (r *Registry) Count(userID string) int {
	e := r.rlockUser(userID)
	if e == nil {
		return 0
	}
	defer e.mu.RUnlock()
	return len(e.wallets)
}

// GetWallet returns a snapshot of one wallet.
func (r *Registry) GetWallet(userID string, index int) (models.Wallet, error) {
	e := r.rlockUser(userID)
	if e == nil {
		return models.Wallet{}, fmt.Errorf("%w: user has no wallets", ErrIndexOutOfRange)
	}
	defer e.mu.RUnlock()

	if index < 0 || index >= len(e.wallets) {
		return models.Wallet{}, fmt.Errorf("%w: index %d of %d", ErrIndexOutOfRange, index, len(e.wallets))
	}
	return e.wallets[index].Clone(), nil
}

// DeleteWallet removes the wallet at index and compacts the sequence.
// Deleting the last wallet removes the user's entry entirely; the returned
// remaining count is then zero. The registry write lock is held across the
// removal so the entry cannot be resurrected mid-delete.
func (r *Registry) DeleteWallet(userID string, index int) (int, error) {
	r.mu.Lock()
	e := r.users[userID]
	if e == nil {
		r.mu.Unlock()
		return 0, fmt.Errorf("%w: user has no wallets", ErrIndexOutOfRange)
	}
	e.mu.Lock()

	if index < 0 || index >= len(e.wallets) {
		n := len(e.wallets)
		e.mu.Unlock()
		r.mu.Unlock()
		return n, fmt.Errorf("%w: index %d of %d", ErrIndexOutOfRange, index, n)
	}

	e.wallets = append(e.wallets[:index], e.wallets[index+1:]...)
	remaining := len(e.wallets)
	if remaining == 0 {
		e.gone = true
		delete(r.users, userID)
	}
	e.mu.Unlock()
	r.mu.Unlock()

	r.log.Info("wallet deleted",
		zap.String("user", userID), zap.Int("index", index), zap.Int("remaining", remaining))
	return remaining, nil
}

// AddPosition accumulates amount onto the wallet's holding of asset.
// Amounts must be strictly positive; positions never go negative.
func (r *Registry) AddPosition(userID string, index int, asset string, amount decimal.Decimal) error {
	if asset == "" {
		return fmt.Errorf("%w: asset symbol is required", ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	e := r.lockUser(userID, false)
	if e == nil {
		return fmt.Errorf("%w: user has no wallets", ErrIndexOutOfRange)
	}
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.wallets) {
		return fmt.Errorf("%w: index %d of %d", ErrIndexOutOfRange, index, len(e.wallets))
	}

	w := e.wallets[index]
	w.Positions[asset] = w.Positions[asset].Add(amount)
	return nil
}
