package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// AddressPrefix marks engine-issued deposit addresses on the ledger.
const AddressPrefix = "sx"

// Provisioner issues a fresh ed25519 keypair per order. The seed is
// never reused; losing it means losing the ability to sweep the
// address, so it is persisted with the order at creation.
type Provisioner struct{}

// NewProvisioner creates a wallet provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Generate returns a new payment address and its hex-encoded private
// key seed. RNG failure is fatal for order creation.
func (p *Provisioner) Generate() (string, string, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return "", "", fmt.Errorf("keypair generation failed: %w", err)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	return DeriveAddress(pub), hex.EncodeToString(seed), nil
}

// DeriveAddress maps a public key to its ledger address: prefixed
// hex of the key's SHA-256 digest, truncated to 20 bytes.
func DeriveAddress(pub ed25519.PublicKey) string {
	digest := sha256.Sum256(pub)
	return AddressPrefix + hex.EncodeToString(digest[:20])
}

// KeyFromSeed reconstructs the signing key for a stored seed.
func KeyFromSeed(seedHex string) (ed25519.PrivateKey, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("malformed key seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("malformed key seed: got %d bytes, want %d", len(seed), ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}
