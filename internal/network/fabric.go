// Package network implements the in-process gossip fabric standing in for
// the peer-to-peer transport spec §1 scopes out of the core: membership
// and dissemination are thin adapters whose only contract with the core is
// delivering opaque block/transaction byte strings. It is grounded on the
// teacher's SimulatedNetwork per-peer goroutine routing, generalized from
// ad hoc string message types to the two named topics spec §6 defines.
package network

import (
	"sync"

	"github.com/decred/slog"
	"github.com/google/uuid"
)

// Topic names, per spec §6 ("methalox-blocks") plus the symmetric topic
// this implementation adds for transaction gossip (out of core scope, but
// needed for the RPC-to-mempool path to reach more than one node).
const (
	TopicBlocks       = "methalox-blocks"
	TopicTransactions = "methalox-transactions"
)

// Message is a gossiped payload: an opaque canonical-encoded Block or
// Transaction, tagged with a topic and a dedup ID.
type Message struct {
	ID    string
	Topic string
	Data  []byte
}

// Peer is a connected node's inbound message channel and routing goroutine.
type Peer struct {
	ID       string
	inbox    chan Message
	stopChan chan struct{}
	wg       sync.WaitGroup
	fabric   *Fabric
	log      slog.Logger
}

func newPeer(id string, fabric *Fabric, log slog.Logger) *Peer {
	return &Peer{
		ID:       id,
		inbox:    make(chan Message, 256),
		stopChan: make(chan struct{}),
		fabric:   fabric,
		log:      log,
	}
}

func (p *Peer) run() {
	defer p.wg.Done()
	for {
		select {
		case msg, ok := <-p.inbox:
			if !ok {
				return
			}
			p.fabric.route(msg)
		case <-p.stopChan:
			return
		}
	}
}

func (p *Peer) start() {
	p.wg.Add(1)
	go p.run()
}

func (p *Peer) stop() {
	close(p.stopChan)
	p.wg.Wait()
}

// Fabric is a single node's view of the gossip overlay: its connected
// peers, and the two channels its own consensus engine reads from.
type Fabric struct {
	nodeID string
	log    slog.Logger

	mu    sync.RWMutex
	peers map[string]*Peer
	seen  map[string]struct{}

	blockRx chan []byte
	txRx    chan []byte
}

// NewFabric creates a node's gossip fabric endpoint.
func NewFabric(nodeID string, log slog.Logger) *Fabric {
	if nodeID == "" {
		nodeID = "node"
	}
	return &Fabric{
		nodeID:  nodeID,
		log:     log,
		peers:   make(map[string]*Peer),
		seen:    make(map[string]struct{}),
		blockRx: make(chan []byte, 256),
		txRx:    make(chan []byte, 256),
	}
}

// Connect adds a peer and starts routing its inbound messages.
func (f *Fabric) Connect(peerID string) *Peer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.peers[peerID]; ok {
		return p
	}
	p := newPeer(peerID, f, f.log)
	p.start()
	f.peers[peerID] = p
	f.log.Infof("fabric %s: connected peer %s", f.nodeID, peerID)
	return p
}

// Disconnect removes and stops a peer's router.
func (f *Fabric) Disconnect(peerID string) {
	f.mu.Lock()
	p, ok := f.peers[peerID]
	if ok {
		delete(f.peers, peerID)
	}
	f.mu.Unlock()
	if ok {
		p.stop()
	}
}

func (f *Fabric) route(msg Message) {
	f.mu.Lock()
	if _, dup := f.seen[msg.ID]; dup {
		f.mu.Unlock()
		return
	}
	f.seen[msg.ID] = struct{}{}
	f.mu.Unlock()

	switch msg.Topic {
	case TopicBlocks:
		select {
		case f.blockRx <- msg.Data:
		default:
			f.log.Warnf("fabric %s: block reception channel full, dropping message %s", f.nodeID, msg.ID)
		}
	case TopicTransactions:
		select {
		case f.txRx <- msg.Data:
		default:
			f.log.Warnf("fabric %s: transaction reception channel full, dropping message %s", f.nodeID, msg.ID)
		}
	default:
		f.log.Warnf("fabric %s: unknown topic %q, discarding", f.nodeID, msg.Topic)
	}
}

func (f *Fabric) publish(topic string, data []byte) {
	msg := Message{ID: uuid.NewString(), Topic: topic, Data: data}

	f.mu.RLock()
	peers := make([]*Peer, 0, len(f.peers))
	for _, p := range f.peers {
		peers = append(peers, p)
	}
	f.mu.RUnlock()

	for _, p := range peers {
		select {
		case p.inbox <- msg:
		default:
			f.log.Warnf("fabric %s: peer %s inbox full, message %s dropped", f.nodeID, p.ID, msg.ID)
		}
	}
}

// PublishBlock gossips a block's canonical encoding on TopicBlocks.
func (f *Fabric) PublishBlock(data []byte) {
	f.publish(TopicBlocks, data)
}

// PublishTransaction gossips a transaction's canonical encoding on
// TopicTransactions.
func (f *Fabric) PublishTransaction(data []byte) {
	f.publish(TopicTransactions, data)
}

// Blocks returns the channel of inbound block payloads for the gossip task
// to read from.
func (f *Fabric) Blocks() <-chan []byte {
	return f.blockRx
}

// Transactions returns the channel of inbound transaction payloads.
func (f *Fabric) Transactions() <-chan []byte {
	return f.txRx
}

// Deliver injects a message as if received from peerID, for tests and for
// the solo/standalone deployment where there is no real transport beneath
// the fabric.
func (f *Fabric) Deliver(peerID, topic string, data []byte) {
	f.route(Message{ID: uuid.NewString(), Topic: topic, Data: data})
	_ = peerID
}
