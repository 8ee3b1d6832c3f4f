package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sort"

	internalerrors "github.com/methalox/methaloxd/internal/errors"
	"github.com/methalox/methaloxd/internal/wire"
)

// GenesisPrevHash is the literal placeholder parent hash of the genesis
// block; it is not itself a hash digest.
const GenesisPrevHash = "0"

// Block is an ordered, hash-linked record of transactions sealed by a
// VRF-elected leader. Hash = SHA256(canonical_serialize(block with hash
// field zeroed)).
type Block struct {
	Index          uint64
	Timestamp      uint64
	Transactions   []*Transaction
	PrevHash       string
	Hash           string
	Validator      string
	FeesCollected  map[Asset]uint64
	VRFProof       []byte
	VRFOutput      []byte
}

// NewBlock constructs an unsealed block; call SetHash to seal it.
func NewBlock(index, timestamp uint64, txs []*Transaction, prevHash, validator string, fees map[Asset]uint64, vrfProof, vrfOutput []byte) *Block {
	if fees == nil {
		fees = make(map[Asset]uint64)
	}
	return &Block{
		Index:         index,
		Timestamp:     timestamp,
		Transactions:  txs,
		PrevHash:      prevHash,
		Validator:     validator,
		FeesCollected: fees,
		VRFProof:      vrfProof,
		VRFOutput:     vrfOutput,
	}
}

// sortedFeeAssets returns FeesCollected's keys in deterministic order, since
// Go's map iteration order is randomized and would otherwise make the block
// hash non-reproducible across peers.
func (b *Block) sortedFeeAssets() []Asset {
	assets := make([]Asset, 0, len(b.FeesCollected))
	for a := range b.FeesCollected {
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i] < assets[j] })
	return assets
}

func (b *Block) encode(w *bytes.Buffer, hashOverride string) error {
	if err := wire.WriteUint64(w, b.Index); err != nil {
		return err
	}
	if err := wire.WriteUint64(w, b.Timestamp); err != nil {
		return err
	}
	if err := wire.WriteUint64(w, uint64(len(b.Transactions))); err != nil {
		return err
	}
	for _, tx := range b.Transactions {
		if err := tx.encode(w, tx.Signature); err != nil {
			return err
		}
	}
	if err := wire.WriteString(w, b.PrevHash); err != nil {
		return err
	}
	if err := wire.WriteString(w, hashOverride); err != nil {
		return err
	}
	if err := wire.WriteString(w, b.Validator); err != nil {
		return err
	}
	assets := b.sortedFeeAssets()
	if err := wire.WriteUint64(w, uint64(len(assets))); err != nil {
		return err
	}
	for _, a := range assets {
		if err := wire.WriteString(w, string(a)); err != nil {
			return err
		}
		if err := wire.WriteUint64(w, b.FeesCollected[a]); err != nil {
			return err
		}
	}
	if err := wire.WriteVarBytes(w, b.VRFProof); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, b.VRFOutput)
}

// ComputeHash re-derives the block hash over the canonical encoding with the
// hash field zeroed, per spec §4.1.
func (b *Block) ComputeHash() (string, error) {
	var buf bytes.Buffer
	if err := b.encode(&buf, ""); err != nil {
		return "", internalerrors.ErrSerializationFailed
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// SetHash computes and stores the block's hash.
func (b *Block) SetHash() error {
	h, err := b.ComputeHash()
	if err != nil {
		return err
	}
	b.Hash = h
	return nil
}

// VerifyHash reports whether the stored Hash matches the recomputed one.
func (b *Block) VerifyHash() (bool, error) {
	h, err := b.ComputeHash()
	if err != nil {
		return false, err
	}
	return h == b.Hash, nil
}

// Encode writes the block's full canonical serialization, hash included,
// for gossip transmission and persistence.
func (b *Block) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.encode(&buf, b.Hash); err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	return buf.Bytes(), nil
}
