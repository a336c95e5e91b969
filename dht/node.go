package dht

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/go-ringdht/ring"
	"github.com/go-ringdht/wire"
)

// Sender delivers one message to a peer's ring endpoint as a single
// datagram. Implementations do not retry; a send failure is fatal to the
// node and must be propagated.
type Sender interface {
	Send(msg wire.Message, to ring.Peer) error
}

// Maintenance receives the ring-maintenance opcodes the core processor
// does not interpret itself. A node with a nil Maintenance drops them as
// invalid messages.
type Maintenance interface {
	HandleStabilize(n *Node, msg wire.Message) error
	HandleNotify(n *Node, msg wire.Message) error
	HandleJoin(n *Node, msg wire.Message) error
}

// Node bundles the process-wide ring state: the three peer slots, the
// lookup cache and the transport handle.
//
// All methods are safe for concurrent use. The cache's refresh and
// eviction passes require read-then-write atomicity across the whole
// table, so a single mutex guards the slots and the cache together.
type Node struct {
	mu          sync.Mutex
	self        ring.Peer
	predecessor ring.Peer
	successor   ring.Peer
	cache       lookupCache
	sender      Sender
	maintenance Maintenance
	log         *zap.SugaredLogger
	now         func() time.Time
}

// NewNode creates a node. self must be a valid peer; predecessor and
// successor may be the zero sentinel while the node has not joined a
// ring. maintenance may be nil, in which case STABILIZE, NOTIFY and JOIN
// messages are dropped.
func NewNode(self, predecessor, successor ring.Peer, sender Sender, maintenance Maintenance, log *zap.SugaredLogger) *Node {
	return &Node{
		self:        self,
		predecessor: predecessor,
		successor:   successor,
		sender:      sender,
		maintenance: maintenance,
		log:         log,
		now:         time.Now,
	}
}

// Self is immutable after construction.
func (n *Node) Self() ring.Peer {
	return n.self
}

func (n *Node) Predecessor() ring.Peer {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.predecessor
}

func (n *Node) Successor() ring.Peer {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.successor
}

// CachedPeers counts the lookup-cache slots that have ever been
// populated, fresh or stale.
func (n *Node) CachedPeers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cache.populated()
}

func (n *Node) send(msg wire.Message, to ring.Peer) error {
	return n.sender.Send(msg, to)
}
