package core

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	internalerrors "github.com/methalox/methaloxd/internal/errors"
)

func newTestWallet(t *testing.T) (ed25519.PrivateKey, string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	return priv, hex.EncodeToString(pub)
}

func TestFee(t *testing.T) {
	tx := NewTransferTransaction("from", "to", 1_000_000, AssetXSX, 1, 0)
	if got, want := tx.Fee(), uint64(1000); got != want {
		t.Fatalf("fee = %d, want %d", got, want)
	}

	tx = NewTransferTransaction("from", "to", 9, AssetXSX, 1, 0)
	if got, want := tx.Fee(), uint64(0); got != want {
		t.Fatalf("fee of tiny amount truncates to %d, got %d", want, got)
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	priv, addr := newTestWallet(t)
	tx := NewTransferTransaction(addr, "recipient", 500, AssetXSX, 1, 100)
	if err := tx.Sign(priv); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := tx.Verify(); err != nil {
		t.Fatalf("verify signed transaction: %v", err)
	}
}

func TestVerifyRejectsInvalidSignatureLength(t *testing.T) {
	_, addr := newTestWallet(t)
	tx := NewTransferTransaction(addr, "recipient", 500, AssetXSX, 1, 100)
	tx.Signature = []byte{1, 2, 3}
	if err := tx.Verify(); err != internalerrors.ErrInvalidSignatureLength {
		t.Fatalf("got %v, want ErrInvalidSignatureLength", err)
	}
}

func TestVerifyRejectsBadAddress(t *testing.T) {
	priv, _ := newTestWallet(t)
	tx := NewTransferTransaction("not-hex-??", "recipient", 500, AssetXSX, 1, 100)
	if err := tx.Sign(priv); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := tx.Verify(); err != internalerrors.ErrInvalidAddressFormat {
		t.Fatalf("got %v, want ErrInvalidAddressFormat", err)
	}
}

func TestVerifyRejectsTamperedAmount(t *testing.T) {
	priv, addr := newTestWallet(t)
	tx := NewTransferTransaction(addr, "recipient", 500, AssetXSX, 1, 100)
	if err := tx.Sign(priv); err != nil {
		t.Fatalf("sign: %v", err)
	}
	tx.Amount = 600
	if err := tx.Verify(); err != internalerrors.ErrInvalidSignature {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
}

func TestEncodeDecodeTransactionRoundTrip(t *testing.T) {
	priv, addr := newTestWallet(t)
	tx := NewStakeTransaction(addr, 1000, []byte("vrf-pub-placeholder-32-bytes!!!!"), 1, 42)
	if err := tx.Sign(priv); err != nil {
		t.Fatalf("sign: %v", err)
	}

	raw, err := tx.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := DecodeTransaction(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.From != tx.From || got.To != tx.To || got.Amount != tx.Amount || got.Kind != tx.Kind ||
		got.Nonce != tx.Nonce || got.Timestamp != tx.Timestamp || got.Asset != tx.Asset {
		t.Fatalf("decoded transaction does not match original: got %+v want %+v", got, tx)
	}
	if err := got.Verify(); err != nil {
		t.Fatalf("decoded transaction does not verify: %v", err)
	}
}

func TestStakeTransactionSelfDebitsOnly(t *testing.T) {
	_, addr := newTestWallet(t)
	tx := NewStakeTransaction(addr, 1000, nil, 1, 0)
	if tx.To != tx.From {
		t.Fatalf("stake transaction must target its own address, got To=%q From=%q", tx.To, tx.From)
	}
}
