package core

import (
	"bytes"

	internalerrors "github.com/methalox/methaloxd/internal/errors"
	"github.com/methalox/methaloxd/internal/wire"
)

const (
	maxAddressLen = 128
	maxAssetLen   = 32
	maxCommitLen  = 4096
	maxSigLen     = 128
	maxVRFLen     = 256
)

// DecodeTransaction parses a transaction from its canonical serialization,
// the inverse of (*Transaction).Encode.
func DecodeTransaction(b []byte) (*Transaction, error) {
	r := bytes.NewReader(b)
	tx := &Transaction{}

	from, err := wire.ReadString(r, maxAddressLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.From = from

	to, err := wire.ReadString(r, maxAddressLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.To = to

	amount, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Amount = amount

	kindByte, err := wire.ReadByte(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Kind = TxKind(kindByte)

	if tx.Kind == KindStake {
		vrfPub, err := wire.ReadVarBytes(r, maxVRFLen)
		if err != nil {
			return nil, internalerrors.ErrSerializationFailed
		}
		tx.StakeVRFPubKey = vrfPub
	}

	ts, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Timestamp = ts

	nonce, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Nonce = nonce

	commitment, err := wire.ReadString(r, maxCommitLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Commitment = commitment

	blinding, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.BlindingFactor = blinding

	asset, err := wire.ReadString(r, maxAssetLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Asset = Asset(asset)

	sig, err := wire.ReadVarBytes(r, maxSigLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Signature = sig

	return tx, nil
}

func decodeTransactionFromReader(r *bytes.Reader) (*Transaction, error) {
	// Transactions inside a block share the block's reader, so this
	// repeats DecodeTransaction's field-by-field logic against that reader
	// instead of a standalone buffer.
	tx := &Transaction{}

	from, err := wire.ReadString(r, maxAddressLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.From = from
	to, err := wire.ReadString(r, maxAddressLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.To = to
	amount, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Amount = amount
	kindByte, err := wire.ReadByte(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Kind = TxKind(kindByte)
	if tx.Kind == KindStake {
		vrfPub, err := wire.ReadVarBytes(r, maxVRFLen)
		if err != nil {
			return nil, internalerrors.ErrSerializationFailed
		}
		tx.StakeVRFPubKey = vrfPub
	}
	ts, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Timestamp = ts
	nonce, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Nonce = nonce
	commitment, err := wire.ReadString(r, maxCommitLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Commitment = commitment
	blinding, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.BlindingFactor = blinding
	asset, err := wire.ReadString(r, maxAssetLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Asset = Asset(asset)
	sig, err := wire.ReadVarBytes(r, maxSigLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	tx.Signature = sig
	return tx, nil
}

// DecodeBlock parses a block from its canonical serialization, the inverse
// of (*Block).Encode.
func DecodeBlock(b []byte) (*Block, error) {
	r := bytes.NewReader(b)
	blk := &Block{FeesCollected: make(map[Asset]uint64)}

	index, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	blk.Index = index

	ts, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	blk.Timestamp = ts

	txCount, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	for i := uint64(0); i < txCount; i++ {
		tx, err := decodeTransactionFromReader(r)
		if err != nil {
			return nil, err
		}
		blk.Transactions = append(blk.Transactions, tx)
	}

	prevHash, err := wire.ReadString(r, maxAddressLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	blk.PrevHash = prevHash

	hash, err := wire.ReadString(r, maxAddressLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	blk.Hash = hash

	validator, err := wire.ReadString(r, maxAddressLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	blk.Validator = validator

	feeCount, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	for i := uint64(0); i < feeCount; i++ {
		asset, err := wire.ReadString(r, maxAssetLen)
		if err != nil {
			return nil, internalerrors.ErrSerializationFailed
		}
		amount, err := wire.ReadUint64(r)
		if err != nil {
			return nil, internalerrors.ErrSerializationFailed
		}
		blk.FeesCollected[Asset(asset)] = amount
	}

	vrfProof, err := wire.ReadVarBytes(r, maxVRFLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	blk.VRFProof = vrfProof

	vrfOutput, err := wire.ReadVarBytes(r, maxVRFLen)
	if err != nil {
		return nil, internalerrors.ErrSerializationFailed
	}
	blk.VRFOutput = vrfOutput

	return blk, nil
}
