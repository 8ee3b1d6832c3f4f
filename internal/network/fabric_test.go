package network

import (
	"testing"
	"time"

	"github.com/decred/slog"
)

func TestDeliverBlockReachesLocalChannel(t *testing.T) {
	f := NewFabric("node-a", slog.Disabled)
	f.Deliver("peer-1", TopicBlocks, []byte("block-payload"))

	select {
	case got := <-f.Blocks():
		if string(got) != "block-payload" {
			t.Fatalf("got %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivered block")
	}
}

func TestDeliverDedupsByMessageContentViaConnectPeer(t *testing.T) {
	f := NewFabric("node-a", slog.Disabled)
	peer := f.Connect("peer-1")
	if peer == nil {
		t.Fatal("connect returned nil peer")
	}
	f.PublishTransaction([]byte("tx-payload"))

	select {
	case got := <-peer.inbox:
		if got.Topic != TopicTransactions {
			t.Fatalf("topic = %q, want %q", got.Topic, TopicTransactions)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for peer to receive published transaction")
	}

	f.Disconnect("peer-1")
}

func TestUnknownTopicIsDiscardedNotDelivered(t *testing.T) {
	f := NewFabric("node-a", slog.Disabled)
	f.Deliver("peer-1", "bogus-topic", []byte("payload"))

	select {
	case <-f.Blocks():
		t.Fatal("unknown topic must not be routed to the blocks channel")
	case <-f.Transactions():
		t.Fatal("unknown topic must not be routed to the transactions channel")
	case <-time.After(100 * time.Millisecond):
	}
}
