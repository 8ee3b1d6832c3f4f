package consensus

import (
	"github.com/methalox/methaloxd/internal/core"
	internalerrors "github.com/methalox/methaloxd/internal/errors"
	"github.com/methalox/methaloxd/internal/ledger"
	"github.com/methalox/methaloxd/internal/vrf"
)

// Validator implements spec §4.5's block validity checks. It is pure: it
// never mutates the ledger. It deliberately does not recheck the VRF
// stake-weight threshold (spec §9 open question 6) — any registered
// validator with a valid VRF proof for the transcript passes.
type Validator struct {
	ledger     *ledger.Ledger
	validators *ValidatorSet
}

// NewValidator binds a block validator to a ledger and validator set.
func NewValidator(l *ledger.Ledger, vs *ValidatorSet) *Validator {
	return &Validator{ledger: l, validators: vs}
}

// ValidateBlock checks linkage against the current tip, the block hash,
// validator registration, and VRF proof verification, in the order spec
// §4.5 lists them.
func (bv *Validator) ValidateBlock(blk *core.Block) error {
	tip := bv.ledger.Tip()

	if blk.Index != tip.Index+1 || blk.PrevHash != tip.Hash {
		return internalerrors.ErrInvalidBlockLinkage
	}

	ok, err := blk.VerifyHash()
	if err != nil {
		return err
	}
	if !ok {
		return internalerrors.ErrInvalidBlockHash
	}

	pub, registered := bv.validators.VRFPublicKey(blk.Validator)
	if !registered {
		return internalerrors.ErrUnknownValidator
	}

	if len(blk.VRFOutput) != vrf.OutputSize || len(blk.VRFProof) == 0 {
		return internalerrors.ErrVrfVerifyFailed
	}

	valid, err := vrf.Verify(pub, parentTranscript(tip), blk.VRFOutput, blk.VRFProof)
	if err != nil {
		return internalerrors.ErrVrfVerifyFailed
	}
	if !valid {
		return internalerrors.ErrVrfVerifyFailed
	}
	return nil
}
