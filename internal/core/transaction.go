// Package core defines the ledger's wire-level record types: Transaction
// and Block. Both are serialized through internal/wire using a canonical,
// deterministic encoding, because their hashes and signatures are computed
// over exactly those bytes.
package core

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	internalerrors "github.com/methalox/methaloxd/internal/errors"
	"github.com/methalox/methaloxd/internal/wire"
)

// Asset is a short string tag for a currency column in the balance table.
type Asset string

// AssetXSX is the native asset; it is privileged in fee-rake burning.
const AssetXSX Asset = "XSX"

// TxKind distinguishes a plain transfer from a stake-registering transaction.
type TxKind uint8

const (
	KindTransfer TxKind = iota
	KindStake
)

// FeeBasisPoints is the transaction fee rate: 10 basis points (0.1%).
const FeeBasisPoints = 10

// Transaction is a signed instruction to move funds or register stake.
// The signature covers the canonical serialization of the transaction with
// the Signature field zeroed.
type Transaction struct {
	From           string
	To             string
	Amount         uint64
	Kind           TxKind
	StakeVRFPubKey []byte // only meaningful when Kind == KindStake; 32 bytes
	Signature      []byte // 64 bytes once signed
	Timestamp      uint64
	Nonce          uint64
	Commitment     string // opaque, carried not interpreted
	BlindingFactor uint64 // opaque, carried not interpreted
	Asset          Asset
}

// NewTransferTransaction builds an unsigned Transfer transaction.
func NewTransferTransaction(from, to string, amount uint64, asset Asset, nonce, timestamp uint64) *Transaction {
	return &Transaction{
		From:      from,
		To:        to,
		Amount:    amount,
		Kind:      KindTransfer,
		Timestamp: timestamp,
		Nonce:     nonce,
		Asset:     asset,
	}
}

// NewStakeTransaction builds an unsigned Stake transaction.
func NewStakeTransaction(from string, amount uint64, vrfPubKey []byte, nonce, timestamp uint64) *Transaction {
	return &Transaction{
		From:           from,
		To:             from,
		Amount:         amount,
		Kind:           KindStake,
		StakeVRFPubKey: vrfPubKey,
		Timestamp:      timestamp,
		Nonce:          nonce,
		Asset:          AssetXSX,
	}
}

// Fee is 10 basis points of the transaction amount, truncated.
func (tx *Transaction) Fee() uint64 {
	return tx.Amount * FeeBasisPoints / 10_000
}

// signingPayload returns the canonical encoding with the signature zeroed,
// which is both the signed message and the basis for equality checks.
func (tx *Transaction) signingPayload() ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.encode(&buf, make([]byte, 64)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (tx *Transaction) encode(w *bytes.Buffer, sig []byte) error {
	if err := wire.WriteString(w, tx.From); err != nil {
		return err
	}
	if err := wire.WriteString(w, tx.To); err != nil {
		return err
	}
	if err := wire.WriteUint64(w, tx.Amount); err != nil {
		return err
	}
	if err := wire.WriteByte(w, byte(tx.Kind)); err != nil {
		return err
	}
	if tx.Kind == KindStake {
		if err := wire.WriteVarBytes(w, tx.StakeVRFPubKey); err != nil {
			return err
		}
	}
	if err := wire.WriteUint64(w, tx.Timestamp); err != nil {
		return err
	}
	if err := wire.WriteUint64(w, tx.Nonce); err != nil {
		return err
	}
	if err := wire.WriteString(w, tx.Commitment); err != nil {
		return err
	}
	if err := wire.WriteUint64(w, tx.BlindingFactor); err != nil {
		return err
	}
	if err := wire.WriteString(w, string(tx.Asset)); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, sig)
}

// Encode writes the transaction's canonical serialization, signature included.
func (tx *Transaction) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.encode(&buf, tx.Signature); err != nil {
		return nil, fmt.Errorf("encode transaction: %w", internalerrors.ErrSerializationFailed)
	}
	return buf.Bytes(), nil
}

// Sign computes the Ed25519 signature over the zero-signature payload.
func (tx *Transaction) Sign(priv ed25519.PrivateKey) error {
	payload, err := tx.signingPayload()
	if err != nil {
		return fmt.Errorf("sign transaction: %w", internalerrors.ErrSerializationFailed)
	}
	tx.Signature = ed25519.Sign(priv, payload)
	return nil
}

// decodeFromAddress decodes the From address into an Ed25519 public key.
func (tx *Transaction) decodeFromAddress() (ed25519.PublicKey, error) {
	pub, err := hex.DecodeString(tx.From)
	if err != nil {
		return nil, internalerrors.ErrInvalidAddressFormat
	}
	if len(pub) != ed25519.PublicKeySize {
		return nil, internalerrors.ErrInvalidPublicKey
	}
	return ed25519.PublicKey(pub), nil
}

// Verify performs the structural + cryptographic checks from spec §4.2
// steps 1-3. It is pure: it never mutates ledger state and does not check
// nonce or balance (the caller does, against live state).
func (tx *Transaction) Verify() error {
	if len(tx.Signature) != ed25519.SignatureSize {
		return internalerrors.ErrInvalidSignatureLength
	}
	pub, err := tx.decodeFromAddress()
	if err != nil {
		return err
	}
	payload, err := tx.signingPayload()
	if err != nil {
		return internalerrors.ErrSerializationFailed
	}
	if !ed25519.Verify(pub, payload, tx.Signature) {
		return internalerrors.ErrInvalidSignature
	}
	return nil
}
