// Package keygen generates wallet key material. Addresses are derived from
// an ed25519 public key the way TON raw addresses are (workchain prefix plus
// a 32-byte hash), but both address and secret are treated as opaque strings
// by the rest of the system.
package keygen

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// ErrGeneration tags any key-generation failure so callers can classify it.
var ErrGeneration = errors.New("key generation failed")

// KeyGen produces fresh address/secret pairs from the OS entropy source.
type KeyGen struct{}

// New returns a ready-to-use generator.
func New() *KeyGen { return &KeyGen{} }

// Generate returns a new (address, secret) pair. The secret is the hex seed
// of the keypair; the address is "0:" plus the hex SHA3-256 of the public key.
func (g *KeyGen) Generate(ctx context.Context) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	sum := sha3.Sum256(pub)

	address := "0:" + hex.EncodeToString(sum[:])
	secret := hex.EncodeToString(seed)
	return address, secret, nil
}
