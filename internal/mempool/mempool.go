// Package mempool implements the FIFO admission pool described in spec
// §5: transactions are admitted by the RPC task in arrival order and
// consumed — not merely inspected — at block construction.
package mempool

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/methalox/methaloxd/internal/core"
)

// ErrTxExists is returned when a transaction with the same key is already
// pending.
var ErrTxExists = fmt.Errorf("transaction already exists in mempool")

// Mempool holds admitted, not-yet-mined transactions in FIFO order. The
// pool is deliberately unbounded — no capacity limit or eviction policy —
// per spec §9's open question 5; implementers should add one before this
// core is exposed to untrusted peers.
type Mempool struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*core.Transaction
}

// NewMempool creates an empty mempool.
func NewMempool() *Mempool {
	return &Mempool{
		entries: make(map[string]*core.Transaction),
	}
}

// key derives a stable identifier for a signed transaction from its
// signature, which is unique per (payload, signer) pair once signed.
func key(tx *core.Transaction) string {
	sum := sha256.Sum256(tx.Signature)
	return hex.EncodeToString(sum[:])
}

// Add admits a transaction at the back of the FIFO queue. It does not
// itself validate the transaction — callers run ledger.ValidateTransaction
// first, matching spec §5's "RPC task ... validates, and appends to the
// mempool" ordering.
func (mp *Mempool) Add(tx *core.Transaction) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	k := key(tx)
	if _, exists := mp.entries[k]; exists {
		return fmt.Errorf("%w: %s", ErrTxExists, k)
	}
	mp.entries[k] = tx
	mp.order = append(mp.order, k)
	return nil
}

// Count returns the number of pending transactions.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return len(mp.order)
}

// Drain snapshots and clears the entire pool in FIFO admission order, per
// spec §4.4 step 1 ("snapshot the mempool; clear it").
func (mp *Mempool) Drain() []*core.Transaction {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	txs := make([]*core.Transaction, 0, len(mp.order))
	for _, k := range mp.order {
		txs = append(txs, mp.entries[k])
	}
	mp.order = nil
	mp.entries = make(map[string]*core.Transaction)
	return txs
}

// Snapshot returns the pending transactions in FIFO order without
// clearing the pool, for persisting mempool contents alongside the
// ledger snapshot.
func (mp *Mempool) Snapshot() []*core.Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	txs := make([]*core.Transaction, 0, len(mp.order))
	for _, k := range mp.order {
		txs = append(txs, mp.entries[k])
	}
	return txs
}

// Requeue reinserts transactions at the front of the queue, preserving
// their relative order, for a block construction attempt that failed
// after draining (e.g. the node lost leader eligibility mid-tick).
func (mp *Mempool) Requeue(txs []*core.Transaction) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	newOrder := make([]string, 0, len(txs)+len(mp.order))
	for _, tx := range txs {
		k := key(tx)
		if _, exists := mp.entries[k]; exists {
			continue
		}
		mp.entries[k] = tx
		newOrder = append(newOrder, k)
	}
	newOrder = append(newOrder, mp.order...)
	mp.order = newOrder
}
