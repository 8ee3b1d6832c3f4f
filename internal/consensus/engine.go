package consensus

import (
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/pkg/errors"

	"github.com/methalox/methaloxd/internal/core"
	"github.com/methalox/methaloxd/internal/ledger"
	"github.com/methalox/methaloxd/internal/network"
)

// Engine is the single-writer event loop dispatcher from spec §5: a tick
// task attempts block production, and a gossip task applies inbound
// blocks. Both run on this one goroutine, so they never race each other;
// the RPC task (internal/rpc) runs on its own goroutine but serializes
// through the same *ledger.Ledger mutex, giving the whole node exactly
// the single mutual-exclusion discipline spec §5 calls for.
type Engine struct {
	ledger    *ledger.Ledger
	election  *Election
	proposer  *Proposer
	validator *Validator
	fabric    *network.Fabric
	nodeAddr  string

	tickInterval time.Duration
	log          slog.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewEngine wires the tick/gossip event loop.
func NewEngine(l *ledger.Ledger, election *Election, proposer *Proposer, validator *Validator, fabric *network.Fabric, nodeAddr string, tickInterval time.Duration, log slog.Logger) *Engine {
	return &Engine{
		ledger:       l,
		election:     election,
		proposer:     proposer,
		validator:    validator,
		fabric:       fabric,
		nodeAddr:     nodeAddr,
		tickInterval: tickInterval,
		log:          log,
		stopChan:     make(chan struct{}),
	}
}

// Start launches the event loop goroutine.
func (e *Engine) Start() {
	e.wg.Add(1)
	go e.loop()
	e.log.Infof("consensus engine started, tick=%s", e.tickInterval)
}

// Stop signals the loop to exit and waits for it.
func (e *Engine) Stop() {
	close(e.stopChan)
	e.wg.Wait()
	e.log.Infof("consensus engine stopped")
}

func (e *Engine) loop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	blockRx := e.fabric.Blocks()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.attemptProduce()
		case raw, ok := <-blockRx:
			if !ok {
				return
			}
			e.handleIncomingBlock(raw)
		}
	}
}

// attemptProduce is the tick task: try to become leader for the next
// block and, if elected, produce and gossip it.
func (e *Engine) attemptProduce() {
	tip := e.ledger.Tip()

	vrfOutput, vrfProof, err := e.election.Attempt(tip.Hash)
	if err != nil {
		e.log.Tracef("not producing for parent %s: %v", tip.Hash, err)
		return
	}

	blk, err := e.proposer.Propose(e.nodeAddr, vrfOutput, vrfProof)
	if err != nil {
		e.log.Errorf("%v", errors.Wrap(err, "produce block"))
		return
	}

	if err := e.validator.ValidateBlock(blk); err != nil {
		e.log.Errorf("%v", errors.Wrap(err, "self-produced block failed validation, not broadcasting"))
		return
	}

	data, err := blk.Encode()
	if err != nil {
		e.log.Errorf("%v", errors.Wrap(err, "encode produced block for broadcast"))
		return
	}
	e.fabric.PublishBlock(data)
}

// handleIncomingBlock is the gossip task: deserialize, validate, and apply
// a block payload received from the fabric. Invalid or out-of-order
// blocks are dropped, logged, never fatal, per spec §4.7/§7.
func (e *Engine) handleIncomingBlock(raw []byte) {
	blk, err := core.DecodeBlock(raw)
	if err != nil {
		e.log.Warnf("%v", errors.Wrap(err, "decode gossiped block"))
		return
	}

	if err := e.validator.ValidateBlock(blk); err != nil {
		e.log.Warnf("rejecting block %d (%s): %v", blk.Index, blk.Hash, err)
		return
	}

	if err := e.ledger.ApplyIncomingBlock(blk); err != nil {
		e.log.Warnf("dropping block %d (%s): %v", blk.Index, blk.Hash, err)
		return
	}

	e.log.Infof("applied gossiped block %d (%s)", blk.Index, blk.Hash)
}
