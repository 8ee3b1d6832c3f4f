package consensus

import (
	"testing"

	"github.com/decred/slog"

	"github.com/methalox/methaloxd/internal/core"
	internalerrors "github.com/methalox/methaloxd/internal/errors"
	"github.com/methalox/methaloxd/internal/ledger"
	"github.com/methalox/methaloxd/internal/mempool"
	"github.com/methalox/methaloxd/internal/vrf"
	"github.com/methalox/methaloxd/internal/walletutil"
)

// buildTestLedger creates a two-validator genesis-style ledger directly
// (white box, same module) so election and validation can be exercised
// without going through the founder's unsignable boot address.
func buildTestLedger(t *testing.T) (*ledger.Ledger, *walletutil.Wallet, *vrf.Keypair) {
	t.Helper()

	w, err := walletutil.New()
	if err != nil {
		t.Fatalf("new wallet: %v", err)
	}
	kp, err := vrf.NewRandomKeypair()
	if err != nil {
		t.Fatalf("new vrf keypair: %v", err)
	}

	founderVRFPub := kp.PublicKeyBytes()
	l, err := ledger.NewGenesis(w.Address, founderVRFPub)
	if err != nil {
		t.Fatalf("new genesis: %v", err)
	}
	return l, w, kp
}

func TestElectionGrantsSoleStakerEveryTick(t *testing.T) {
	l, _, kp := buildTestLedger(t)

	vs := NewValidatorSet(l)
	election := NewElection(vs, kp, ledger.FounderAddress)

	tip := l.Tip()
	_, _, err := election.Attempt(tip.Hash)
	if err != nil {
		t.Fatalf("sole staker with full stake must always win election, got: %v", err)
	}
}

func TestElectionRejectsNonStaker(t *testing.T) {
	l, _, kp := buildTestLedger(t)

	vs := NewValidatorSet(l)
	election := NewElection(vs, kp, "someone-with-no-stake")

	tip := l.Tip()
	_, _, err := election.Attempt(tip.Hash)
	if err != internalerrors.ErrNoStake {
		t.Fatalf("got %v, want ErrNoStake", err)
	}
}

func TestProposeAndValidateBlock(t *testing.T) {
	l, _, kp := buildTestLedger(t)

	mp := mempool.NewMempool()
	vs := NewValidatorSet(l)
	election := NewElection(vs, kp, ledger.FounderAddress)
	proposer := NewProposer(l, mp, slog.Disabled)
	validator := NewValidator(l, vs)

	tip := l.Tip()
	vrfOutput, vrfProof, err := election.Attempt(tip.Hash)
	if err != nil {
		t.Fatalf("election: %v", err)
	}

	blk, err := proposer.Propose(ledger.FounderAddress, vrfOutput, vrfProof)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	if err := validator.ValidateBlock(blk); err != nil {
		t.Fatalf("validate produced block: %v", err)
	}
}

func TestValidateBlockRejectsBadLinkage(t *testing.T) {
	l, _, _ := buildTestLedger(t)
	vs := NewValidatorSet(l)
	validator := NewValidator(l, vs)

	bad := core.NewBlock(99, 0, nil, "wrong-parent", ledger.FounderAddress, nil, nil, nil)
	bad.SetHash()

	if err := validator.ValidateBlock(bad); err != internalerrors.ErrInvalidBlockLinkage {
		t.Fatalf("got %v, want ErrInvalidBlockLinkage", err)
	}
}

func TestValidateBlockRejectsUnknownValidator(t *testing.T) {
	l, _, _ := buildTestLedger(t)
	vs := NewValidatorSet(l)
	validator := NewValidator(l, vs)

	tip := l.Tip()
	bad := core.NewBlock(tip.Index+1, 0, nil, tip.Hash, "not-a-validator", nil, nil, nil)
	bad.SetHash()

	if err := validator.ValidateBlock(bad); err != internalerrors.ErrUnknownValidator {
		t.Fatalf("got %v, want ErrUnknownValidator", err)
	}
}
