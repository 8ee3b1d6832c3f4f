// Package walletutil provides Ed25519 keypair generation, address
// derivation, and transaction-signing helpers used by genesis bootstrap
// tooling and by tests that need a signed transaction without standing up
// a full node.
package walletutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Wallet pairs an Ed25519 keypair with its derived address.
type Wallet struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
	Address    string
}

// New generates a fresh Ed25519 keypair. The address is the hex encoding
// of the public key, per spec §3 ("a hex string that also encodes a
// 32-byte Ed25519 verifying key").
func New() (*Wallet, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Wallet{
		PrivateKey: priv,
		PublicKey:  pub,
		Address:    hex.EncodeToString(pub),
	}, nil
}

// FromSeed derives a deterministic keypair from a 32-byte seed, used for
// reproducible test fixtures and scripted genesis bootstrapping.
func FromSeed(seed [32]byte) *Wallet {
	priv := ed25519.NewKeyFromSeed(seed[:])
	pub := priv.Public().(ed25519.PublicKey)
	return &Wallet{
		PrivateKey: priv,
		PublicKey:  pub,
		Address:    hex.EncodeToString(pub),
	}
}
