package consensus

import (
	"time"

	"github.com/decred/slog"

	"github.com/methalox/methaloxd/internal/core"
	"github.com/methalox/methaloxd/internal/ledger"
	"github.com/methalox/methaloxd/internal/mempool"
)

// Proposer implements spec §4.4: when elected, it drains the mempool,
// revalidates and applies surviving transactions, seals a block, and
// returns it to the caller, which encodes and broadcasts it.
type Proposer struct {
	ledger  *ledger.Ledger
	mempool *mempool.Mempool
	log     slog.Logger
}

// NewProposer builds a block proposer bound to a ledger and mempool.
func NewProposer(l *ledger.Ledger, mp *mempool.Mempool, log slog.Logger) *Proposer {
	return &Proposer{ledger: l, mempool: mp, log: log}
}

// Propose builds and seals the next block using the given VRF proof and
// output (already computed by a won Election.Attempt), and applies its
// post-block accounting. The mempool is drained before the block is
// assembled, per spec §4.4 step 1.
func (p *Proposer) Propose(validatorAddr string, vrfOutput [32]byte, vrfProof [64]byte) (*core.Block, error) {
	candidates := p.mempool.Drain()

	blk, err := p.ledger.BuildBlock(validatorAddr, vrfProof[:], vrfOutput[:], candidates, uint64(time.Now().Unix()))
	if err != nil {
		// The drained transactions were never applied; return them to the
		// front of the queue so they aren't lost.
		p.mempool.Requeue(candidates)
		return nil, err
	}

	p.log.Infof("produced block %d with %d transactions (hash=%s)", blk.Index, len(blk.Transactions), blk.Hash)
	return blk, nil
}
