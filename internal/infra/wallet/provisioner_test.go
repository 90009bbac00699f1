package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"testing"
)

func TestProvisioner_Generate(t *testing.T) {
	p := NewProvisioner()

	address, seed, err := p.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.HasPrefix(address, AddressPrefix) {
		t.Errorf("address %q missing prefix %q", address, AddressPrefix)
	}
	// Prefix + 20 digest bytes in hex.
	if len(address) != len(AddressPrefix)+40 {
		t.Errorf("address length = %d, want %d", len(address), len(AddressPrefix)+40)
	}

	seedBytes, err := hex.DecodeString(seed)
	if err != nil {
		t.Fatalf("seed is not hex: %v", err)
	}
	if len(seedBytes) != ed25519.SeedSize {
		t.Errorf("seed length = %d, want %d", len(seedBytes), ed25519.SeedSize)
	}
}

func TestProvisioner_Generate_Unique(t *testing.T) {
	p := NewProvisioner()
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		address, seed, err := p.Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if seen[address] || seen[seed] {
			t.Fatalf("duplicate keypair after %d generations", i)
		}
		seen[address] = true
		seen[seed] = true
	}
}

func TestKeyFromSeed_Roundtrip(t *testing.T) {
	p := NewProvisioner()
	address, seed, err := p.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	priv, err := KeyFromSeed(seed)
	if err != nil {
		t.Fatalf("KeyFromSeed failed: %v", err)
	}

	// The recovered key must control the generated address.
	derived := DeriveAddress(priv.Public().(ed25519.PublicKey))
	if derived != address {
		t.Errorf("derived address %q != generated %q", derived, address)
	}
}

func TestKeyFromSeed_Malformed(t *testing.T) {
	if _, err := KeyFromSeed("not-hex"); err == nil {
		t.Error("expected error for non-hex seed")
	}
	if _, err := KeyFromSeed("abcd"); err == nil {
		t.Error("expected error for short seed")
	}
}
