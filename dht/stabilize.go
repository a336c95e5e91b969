package dht

import (
	"time"

	"github.com/go-ringdht/ring"
	"github.com/go-ringdht/wire"
)

// RingMaintainer implements the successor/predecessor repair protocol on
// top of the STABILIZE, NOTIFY and JOIN opcodes.
//
// A node starting its own ring must be configured with predecessor =
// successor = self so the single-node rule makes it responsible for the
// whole identifier space; joining nodes leave both slots zero and send a
// JOIN to an anchor.
type RingMaintainer struct{}

func NewRingMaintainer() *RingMaintainer {
	return &RingMaintainer{}
}

// HandleStabilize adopts the originator as predecessor when the slot is
// empty or the originator sits between the current predecessor and us,
// then answers with a NOTIFY carrying our predecessor so the originator
// can check its successor pointer.
func (m *RingMaintainer) HandleStabilize(n *Node, msg wire.Message) error {
	origin := msg.Peer
	if n.predecessor.IsZero() || closerPredecessor(n.predecessor.ID, n.self.ID, origin.ID) {
		n.log.Infof("Adopting predecessor %s", origin)
		n.predecessor = origin
	}
	reply := wire.Message{Opcode: wire.Notify, Hash: n.predecessor.ID, Peer: n.predecessor}
	return n.send(reply, origin)
}

// HandleNotify adopts the carried peer as successor when the slot is
// empty or the candidate is ring-closer than the current successor. A
// notify naming ourselves means the ring is already consistent.
func (m *RingMaintainer) HandleNotify(n *Node, msg wire.Message) error {
	candidate := msg.Peer
	if candidate.IsZero() || candidate.Equal(n.self) {
		return nil
	}
	if n.successor.IsZero() || ring.Distance(n.self.ID, candidate.ID) < ring.Distance(n.self.ID, n.successor.ID) {
		n.log.Infof("Adopting successor %s", candidate)
		n.successor = candidate
	}
	return nil
}

// HandleJoin welcomes the joiner as our new predecessor when we own its
// identifier, telling it via NOTIFY that we are its successor; otherwise
// the join travels on around the ring. The displaced predecessor learns
// about the joiner through its next stabilization round.
func (m *RingMaintainer) HandleJoin(n *Node, msg wire.Message) error {
	joiner := msg.Peer
	if !ring.IsResponsible(n.predecessor.ID, n.self.ID, joiner.ID) {
		n.log.Debugf("Forwarding join of %s to %s", joiner, n.successor)
		return n.send(msg, n.successor)
	}
	n.log.Infof("Adopting joining predecessor %s", joiner)
	n.predecessor = joiner
	welcome := wire.Message{Opcode: wire.Notify, Hash: n.self.ID, Peer: n.self}
	return n.send(welcome, joiner)
}

// closerPredecessor reports whether candidate lies strictly between the
// current predecessor and self on the ring.
func closerPredecessor(predecessor, self, candidate ring.ID) bool {
	return candidate != self && ring.Distance(candidate, self) < ring.Distance(predecessor, self)
}

// Stabilize probes the successor once. A node with no successor, or one
// that is its own successor, has nothing to probe.
func (n *Node) Stabilize() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.successor.IsZero() || n.successor.Equal(n.self) {
		return nil
	}
	msg := wire.Message{Opcode: wire.Stabilize, Hash: n.self.ID, Peer: n.self}
	return n.send(msg, n.successor)
}

// RunStabilization drives periodic successor probing until stop is
// closed. Send failures are fatal-by-design, so the loop stops on the
// first error.
func (n *Node) RunStabilization(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := n.Stabilize(); err != nil {
				n.log.Errorf("Stabilization failed: %s", err)
				return
			}
		}
	}
}
