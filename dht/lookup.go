package dht

import (
	"github.com/go-ringdht/ring"
	"github.com/go-ringdht/wire"
)

// Lookup asks the ring who owns id by sending a LOOKUP to the successor.
// The answer arrives later as a REPLY and lands in the lookup cache; it
// is not awaited here.
func (n *Node) Lookup(id ring.ID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	msg := wire.Message{Opcode: wire.Lookup, Hash: id, Peer: n.self}
	return n.send(msg, n.successor)
}

// SendJoin announces this node to target. One-shot: the eventual NOTIFY
// naming our successor is processed like any other received message.
func (n *Node) SendJoin(target ring.Peer) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	msg := wire.Message{Opcode: wire.Join, Hash: 0, Peer: n.self}
	return n.send(msg, target)
}
