package consensus

import (
	"github.com/methalox/methaloxd/internal/core"
	internalerrors "github.com/methalox/methaloxd/internal/errors"
	"github.com/methalox/methaloxd/internal/vrf"
)

// Election implements spec §4.3: on each tick, a node attempts to become
// leader for the next block by VRF-signing the parent hash and comparing
// the result against a stake-proportional threshold.
type Election struct {
	validators *ValidatorSet
	keypair    *vrf.Keypair
	nodeAddr   string
}

// NewElection binds a node's VRF keypair and address to a validator set.
func NewElection(validators *ValidatorSet, keypair *vrf.Keypair, nodeAddr string) *Election {
	return &Election{validators: validators, keypair: keypair, nodeAddr: nodeAddr}
}

// Attempt runs one election for the block that would follow parentHash. It
// returns the VRF proof/output to attach to a produced block, or
// ErrNotLeader / ErrNoStake if this node did not win the tick.
//
// mine == 0 is special-cased to abstain before the threshold formula runs,
// per spec §4.3's explicit instruction ("implementers must reject
// production when mine = 0") — see DESIGN.md open question 1. The raw
// formula in internal/vrf.ThresholdFromStake is left reproducing the
// u64::MAX gap unmodified; only this caller adds the guard.
func (e *Election) Attempt(parentHash string) (output [32]byte, proof [64]byte, err error) {
	mine, total := e.validators.Stake(e.nodeAddr)
	if total == 0 {
		return output, proof, internalerrors.ErrNoTotalStake
	}
	if mine == 0 {
		return output, proof, internalerrors.ErrNoStake
	}

	transcript := []byte(parentHash)
	output, proof, err = e.keypair.Prove(transcript)
	if err != nil {
		return output, proof, err
	}

	value := vrf.ValueFromOutput(output)
	threshold := vrf.ThresholdFromStake(mine, total)
	if value > threshold {
		return output, proof, internalerrors.ErrNotLeader
	}
	return output, proof, nil
}

// parentTranscript is the ASCII bytes of the parent block's hex hash, per
// spec §4.1 — never the raw digest.
func parentTranscript(parent *core.Block) []byte {
	return []byte(parent.Hash)
}
