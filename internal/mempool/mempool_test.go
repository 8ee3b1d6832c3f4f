package mempool

import (
	"testing"

	"github.com/methalox/methaloxd/internal/core"
)

func signedTx(from string, nonce uint64, sigByte byte) *core.Transaction {
	tx := core.NewTransferTransaction(from, "recipient", 10, core.AssetXSX, nonce, 0)
	tx.Signature = make([]byte, 64)
	tx.Signature[0] = sigByte
	return tx
}

func TestAddAndDrainPreservesFIFOOrder(t *testing.T) {
	mp := NewMempool()
	a := signedTx("alice", 1, 1)
	b := signedTx("bob", 1, 2)
	c := signedTx("carol", 1, 3)

	for _, tx := range []*core.Transaction{a, b, c} {
		if err := mp.Add(tx); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if got := mp.Count(); got != 3 {
		t.Fatalf("count = %d, want 3", got)
	}

	drained := mp.Drain()
	if len(drained) != 3 {
		t.Fatalf("drained %d transactions, want 3", len(drained))
	}
	if drained[0] != a || drained[1] != b || drained[2] != c {
		t.Fatal("drain did not preserve FIFO admission order")
	}
	if got := mp.Count(); got != 0 {
		t.Fatalf("pool not cleared after drain: count = %d", got)
	}
}

func TestAddRejectsDuplicate(t *testing.T) {
	mp := NewMempool()
	tx := signedTx("alice", 1, 9)
	if err := mp.Add(tx); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := mp.Add(tx); err == nil {
		t.Fatal("duplicate transaction was accepted")
	}
}

func TestRequeuePreservesOrderAndSkipsDuplicates(t *testing.T) {
	mp := NewMempool()
	late := signedTx("dave", 1, 4)
	if err := mp.Add(late); err != nil {
		t.Fatalf("add: %v", err)
	}

	a := signedTx("alice", 1, 1)
	b := signedTx("bob", 1, 2)
	mp.Requeue([]*core.Transaction{a, b, late})

	drained := mp.Drain()
	if len(drained) != 3 {
		t.Fatalf("got %d transactions, want 3", len(drained))
	}
	if drained[0] != a || drained[1] != b || drained[2] != late {
		t.Fatal("requeue did not place candidates at the front in order")
	}
}

func TestSnapshotDoesNotClear(t *testing.T) {
	mp := NewMempool()
	tx := signedTx("alice", 1, 5)
	if err := mp.Add(tx); err != nil {
		t.Fatalf("add: %v", err)
	}
	snap := mp.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot length = %d, want 1", len(snap))
	}
	if got := mp.Count(); got != 1 {
		t.Fatalf("snapshot cleared the pool: count = %d", got)
	}
}
