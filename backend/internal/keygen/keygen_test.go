package keygen

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func TestGenerateShape(t *testing.T) {
	g := New()

	address, secret, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(address, "0:") {
		t.Errorf("address = %q, want 0: prefix", address)
	}
	hash := strings.TrimPrefix(address, "0:")
	if len(hash) != 64 {
		t.Errorf("address hash is %d hex chars, want 64", len(hash))
	}
	if _, err := hex.DecodeString(hash); err != nil {
		t.Errorf("address hash is not hex: %v", err)
	}

	seed, err := hex.DecodeString(secret)
	if err != nil {
		t.Fatalf("secret is not hex: %v", err)
	}
	if len(seed) != 32 {
		t.Errorf("seed is %d bytes, want 32", len(seed))
	}
}

func TestGenerateIsUnique(t *testing.T) {
	g := New()
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		address, secret, err := g.Generate(context.Background())
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if seen[address] || seen[secret] {
			t.Fatalf("duplicate key material on iteration %d", i)
		}
		seen[address] = true
		seen[secret] = true
	}
}

func TestGenerateHonorsCanceledContext(t *testing.T) {
	g := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := g.Generate(ctx)
	if !errors.Is(err, ErrGeneration) {
		t.Errorf("err = %v, want ErrGeneration", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, should wrap context.Canceled", err)
	}
}
