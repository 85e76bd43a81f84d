package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account represents a chat gateway account. The account ID (stringified)
// is the UserId key for all per-user state in the engine.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Store hash, exclude from JSON responses
	CreatedAt    time.Time `json:"created_at"`
}

// Wallet is a single wallet record owned by a user.
// Secret is capability material (mnemonic/seed). It must never be logged and
// is shown to the user exactly once, in the render that confirms
// generation or connection.
type Wallet struct {
	Address   string                     `json:"address"`
	Secret    string                     `json:"-"`
	Positions map[string]decimal.Decimal `json:"positions"`
	CreatedAt time.Time                  `json:"created_at"`
}

// Clone returns a deep copy so registry snapshots can't be mutated by callers.
func (w *Wallet) Clone() Wallet {
	cp := Wallet{
		Address:   w.Address,
		Secret:    w.Secret,
		CreatedAt: w.CreatedAt,
		Positions: make(map[string]decimal.Decimal, len(w.Positions)),
	}
	for asset, amount := range w.Positions {
		cp.Positions[asset] = amount
	}
	return cp
}

// Direction of a settlement request.
type Direction string

const (
	Buy  Direction = "buy"  // platform -> user
	Sell Direction = "sell" // user -> platform
)

// TransactionRequest is a validated, fee-adjusted transfer request.
// Created fresh per request, never persisted; handed straight to the
// settlement service.
type TransactionRequest struct {
	ID                  uuid.UUID       `json:"id"`
	Direction           Direction       `json:"direction"`
	GrossAmount         decimal.Decimal `json:"gross_amount"`
	FeeRate             decimal.Decimal `json:"fee_rate"`
	NetAmount           decimal.Decimal `json:"net_amount"`
	CounterpartyAddress string          `json:"counterparty_address"`
	CreatedAt           time.Time       `json:"created_at"`
}

// SettlementResult is the settlement service's verdict on a request.
// Details is surfaced verbatim to the user on failure.
type SettlementResult struct {
	OK      bool   `json:"ok"`
	Details string `json:"details"`
}
