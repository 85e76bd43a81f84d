package txbuilder

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/user/tonpilot/backend/internal/models"
)

func TestFeeDeductionIsExact(t *testing.T) {
	b := New(decimal.RequireFromString("0.03"))

	req, err := b.BuildRequest(models.Buy, "100", "0:dest")
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if !req.NetAmount.Equal(decimal.NewFromInt(97)) {
		t.Errorf("NetAmount = %s, want exactly 97", req.NetAmount)
	}
	if !req.GrossAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("GrossAmount = %s, want 100", req.GrossAmount)
	}
	if req.Direction != models.Buy {
		t.Errorf("Direction = %q, want buy", req.Direction)
	}
}

func TestFractionalAmounts(t *testing.T) {
	b := New(decimal.RequireFromString("0.01"))

	cases := []struct {
		amount string
		want   string
	}{
		{"0.5", "0.495"},
		{"1", "0.99"},
		{"33.33", "32.9967"},
	}
	for _, tc := range cases {
		req, err := b.BuildRequest(models.Sell, tc.amount, "0:dest")
		if err != nil {
			t.Fatalf("BuildRequest(%q): %v", tc.amount, err)
		}
		if !req.NetAmount.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("net for %s = %s, want %s", tc.amount, req.NetAmount, tc.want)
		}
	}
}

func TestZeroFeePassesGrossThrough(t *testing.T) {
	b := New(decimal.Zero)

	req, err := b.BuildRequest(models.Buy, "12.5", "0:dest")
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if !req.NetAmount.Equal(req.GrossAmount) {
		t.Errorf("net %s != gross %s with zero fee", req.NetAmount, req.GrossAmount)
	}
}

func TestInvalidAmounts(t *testing.T) {
	b := New(decimal.RequireFromString("0.01"))

	for _, amount := range []string{"", "abc", "0", "-5", "1.2.3", "  "} {
		_, err := b.BuildRequest(models.Buy, amount, "0:dest")
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("BuildRequest(%q): err = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestMissingDestination(t *testing.T) {
	b := New(decimal.RequireFromString("0.01"))

	for _, dest := range []string{"", "   "} {
		_, err := b.BuildRequest(models.Buy, "10", dest)
		if !errors.Is(err, ErrInvalidDestination) {
			t.Errorf("BuildRequest(dest=%q): err = %v, want ErrInvalidDestination", dest, err)
		}
	}
}

func TestDestinationIsTrimmed(t *testing.T) {
	b := New(decimal.RequireFromString("0.01"))

	req, err := b.BuildRequest(models.Sell, "10", "  0:dest  ")
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.CounterpartyAddress != "0:dest" {
		t.Errorf("CounterpartyAddress = %q, want trimmed 0:dest", req.CounterpartyAddress)
	}
}

func TestRequestIDsAreUnique(t *testing.T) {
	b := New(decimal.RequireFromString("0.01"))

	a, err := b.BuildRequest(models.Buy, "1", "0:dest")
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	c, err := b.BuildRequest(models.Buy, "1", "0:dest")
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if a.ID == c.ID {
		t.Error("two requests share an ID")
	}
}
