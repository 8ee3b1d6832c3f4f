// Package internalerrors collects the sentinel error kinds surfaced by the
// core ledger, transaction validator, block builder/applier, and leader
// election. Callers wrap these with fmt.Errorf("...: %w", ErrX) and test
// with errors.Is.
package internalerrors

import "errors"

// Transaction validation errors (checked in order by the validator).
var (
	ErrSerializationFailed   = errors.New("canonical serialization failed")
	ErrInvalidSignatureLength = errors.New("signature has an invalid length")
	ErrInvalidAddressFormat  = errors.New("address is not valid hex")
	ErrInvalidPublicKey      = errors.New("address does not decode to a valid ed25519 public key")
	ErrInvalidSignature      = errors.New("signature verification failed")
	ErrInvalidNonce          = errors.New("nonce does not match stored nonce + 1")
	ErrInsufficientBalance   = errors.New("sender balance is insufficient for amount + fee")
	ErrUnknownAsset          = errors.New("asset is not recognized")
)

// Block validation errors.
var (
	ErrInvalidBlockLinkage = errors.New("block index/prev_hash does not chain to the local tip")
	ErrInvalidBlockHash    = errors.New("recomputed block hash does not match stored hash")
	ErrUnknownValidator    = errors.New("block validator is not a registered vrf public key")
	ErrVrfVerifyFailed     = errors.New("vrf proof failed verification")
	ErrOutOfOrderBlock     = errors.New("block index does not equal the expected next index")
)

// Leader election / proposer errors.
var (
	ErrNotLeader    = errors.New("node is not elected leader for this tick")
	ErrNoStake      = errors.New("node holds no stake; abstaining from election")
	ErrNoTotalStake = errors.New("total staked amount is zero")
)

// General / persistence errors.
var (
	ErrNotImplemented        = errors.New("feature not implemented")
	ErrCriticalStateCorruption = errors.New("critical state corruption detected")
	ErrAccountNotFound       = errors.New("account not found")
	ErrSnapshotLoadFailed    = errors.New("failed to load chain state snapshot")
	ErrSnapshotSaveFailed    = errors.New("failed to persist chain state snapshot")
	ErrVRFKeyMismatch        = errors.New("snapshot was written by a different node identity")
)
