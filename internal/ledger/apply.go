package ledger

import (
	"sort"

	"github.com/methalox/methaloxd/internal/core"
	internalerrors "github.com/methalox/methaloxd/internal/errors"
)

// applyTxEffectsLocked implements spec §4.4 step 2 / §4.7's replay step:
// unconditionally debit amount+fee from the sender, credit amount to the
// recipient, and advance the sender's nonce — for both Transfer and Stake
// transactions alike. feesCollected, if non-nil, accumulates the fee under
// the transaction's asset unless the transaction is a Stake, per the
// asymmetry spec §4.4 calls out explicitly.
//
// Stake transactions never credit the staked map here (open question 4 in
// DESIGN.md): the validator set and stake weights are frozen at genesis,
// and a Stake transaction's only effect is the same debit/credit/nonce
// bookkeeping every other transaction gets. This is a deliberate
// limitation, not an oversight.
func (l *Ledger) applyTxEffectsLocked(tx *core.Transaction, feesCollected map[core.Asset]uint64) error {
	fee := tx.Fee()
	if err := l.debit(tx.From, tx.Asset, tx.Amount+fee); err != nil {
		return err
	}
	l.credit(tx.To, tx.Asset, tx.Amount)
	l.advanceNonce(tx.From, tx.Asset)
	if feesCollected != nil && tx.Kind != core.KindStake {
		feesCollected[tx.Asset] += fee
	}
	return nil
}

// BuildBlock implements spec §4.4: it revalidates each candidate
// transaction (already snapshotted and drained from the mempool by the
// caller), drops invalid ones, applies surviving transactions' effects,
// and seals a new block on top of the current tip.
func (l *Ledger) BuildBlock(validatorAddr string, vrfProof, vrfOutput []byte, candidates []*core.Transaction, now uint64) (*core.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fees := make(map[core.Asset]uint64)
	accepted := make([]*core.Transaction, 0, len(candidates))
	for _, tx := range candidates {
		if err := tx.Verify(); err != nil {
			l.log.Warnf("dropping transaction from %s: %v", tx.From, err)
			continue
		}
		if err := l.checkNonceAndBalanceLocked(tx); err != nil {
			l.log.Warnf("dropping transaction from %s: %v", tx.From, err)
			continue
		}
		if err := l.applyTxEffectsLocked(tx, fees); err != nil {
			l.log.Warnf("dropping transaction from %s: %v", tx.From, err)
			continue
		}
		accepted = append(accepted, tx)
	}

	tip := l.blocks[len(l.blocks)-1]
	blk := core.NewBlock(tip.Index+1, now, accepted, tip.Hash, validatorAddr, fees, vrfProof, vrfOutput)
	if err := blk.SetHash(); err != nil {
		return nil, err
	}

	l.blocks = append(l.blocks, blk)
	l.distributeFeesAndTailRewardLocked(blk)
	return blk, nil
}

// ApplyIncomingBlock implements spec §4.7: accept iff index == len(blocks)
// (the caller is responsible for §4.5's structural/VRF validation before
// calling this), then replay each transaction's effects against local
// state (skipping invalid ones, never failing the block for it), then
// apply §4.6 fee distribution and tail issuance using the block's own
// fees_collected field.
func (l *Ledger) ApplyIncomingBlock(blk *core.Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if blk.Index != uint64(len(l.blocks)) {
		return internalerrors.ErrOutOfOrderBlock
	}

	for _, tx := range blk.Transactions {
		if err := tx.Verify(); err != nil {
			l.log.Warnf("skipping transaction from %s on replay: %v", tx.From, err)
			continue
		}
		if err := l.checkNonceAndBalanceLocked(tx); err != nil {
			l.log.Warnf("skipping transaction from %s on replay: %v", tx.From, err)
			continue
		}
		if err := l.applyTxEffectsLocked(tx, nil); err != nil {
			l.log.Warnf("skipping transaction from %s on replay: %v", tx.From, err)
			continue
		}
	}

	l.blocks = append(l.blocks, blk)
	l.distributeFeesAndTailRewardLocked(blk)
	return nil
}

// distributeFeesAndTailRewardLocked implements spec §4.6. The XSX burn
// amount is deliberately never credited anywhere and xsx_circulating is
// left untouched by it (open question 3 in DESIGN.md): the counter tracks
// cumulative issuance, not true outstanding supply.
func (l *Ledger) distributeFeesAndTailRewardLocked(blk *core.Block) {
	assets := make([]core.Asset, 0, len(blk.FeesCollected))
	for a := range blk.FeesCollected {
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i] < assets[j] })

	for _, asset := range assets {
		totalFee := blk.FeesCollected[asset]
		validatorShare := totalFee / 2
		l.credit(blk.Validator, asset, validatorShare)

		founderRake := totalFee - validatorShare
		if asset == core.AssetXSX {
			burn := founderRake * FounderBurnRateNumerator / FounderBurnRateDenominator
			l.credit(FounderAddress, asset, founderRake-burn)
		} else {
			l.credit(FounderAddress, asset, founderRake)
		}
	}

	totalStake := l.totalStakeLocked()
	if totalStake == 0 {
		return
	}

	var shortfall uint64
	if l.xsxCirculating < SupplyCap {
		shortfall = SupplyCap - l.xsxCirculating
	}
	tailTotal := uint64(BaseTailReward) + shortfall/CapToMintRatio

	for _, addr := range l.sortedStakerAddrs() {
		stake := l.staked[addr]
		share := tailTotal * stake / totalStake
		l.credit(addr, core.AssetXSX, share)
	}
	l.xsxCirculating += tailTotal
}
