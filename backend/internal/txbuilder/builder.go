// Package txbuilder validates buy/sell inputs and produces fee-adjusted
// settlement requests. It never executes a transfer itself.
package txbuilder

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/user/tonpilot/backend/internal/models"
)

var (
	// ErrInvalidAmount marks an unparseable or non-positive amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidDestination marks a missing counterparty address.
	ErrInvalidDestination = errors.New("invalid destination")
)

// Builder constructs settlement requests with a fixed deployment fee rate.
type Builder struct {
	feeRate decimal.Decimal
}

// New returns a builder deducting feeRate from every gross amount.
func New(feeRate decimal.Decimal) *Builder {
	return &Builder{feeRate: feeRate}
}

// FeeRate returns the deployment fee rate.
func (b *Builder) FeeRate() decimal.Decimal { return b.feeRate }

// BuildRequest parses amountText and returns a settlement request with
// netAmount = gross * (1 - feeRate). Decimal arithmetic is exact; nothing
// is rounded or truncated here.
func (b *Builder) BuildRequest(direction models.Direction, amountText, counterpartyAddress string) (*models.TransactionRequest, error) {
	gross, err := decimal.NewFromString(strings.TrimSpace(amountText))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amountText)
	}
	if !gross.IsPositive() {
		return nil, fmt.Errorf("%w: %s is not positive", ErrInvalidAmount, gross)
	}
	if strings.TrimSpace(counterpartyAddress) == "" {
		return nil, ErrInvalidDestination
	}

	net := gross.Mul(decimal.NewFromInt(1).Sub(b.feeRate))

	return &models.TransactionRequest{
		ID:                  uuid.New(),
		Direction:           direction,
		GrossAmount:         gross,
		FeeRate:             b.feeRate,
		NetAmount:           net,
		CounterpartyAddress: strings.TrimSpace(counterpartyAddress),
		CreatedAt:           time.Now(),
	}, nil
}
