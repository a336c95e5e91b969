package dht

import "github.com/go-ringdht/wire"

// Process runs the state transition for one received message. Side
// effects are limited to the peer slots, the lookup cache and at most one
// outgoing send. An invalid opcode is logged and dropped; a returned
// error is a transport failure and must be treated as fatal.
func (n *Node) Process(msg wire.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch msg.Opcode {
	case wire.Lookup:
		return n.processLookup(msg)
	case wire.Reply:
		n.log.Debugf("Caching reply: %s claims the identifiers after %d", msg.Peer, msg.Hash)
		n.cache.update(msg.Hash, msg.Peer, n.now().UnixMilli())
		return nil
	case wire.Stabilize:
		if n.maintenance != nil {
			return n.maintenance.HandleStabilize(n, msg)
		}
	case wire.Notify:
		if n.maintenance != nil {
			return n.maintenance.HandleNotify(n, msg)
		}
	case wire.Join:
		if n.maintenance != nil {
			return n.maintenance.HandleJoin(n, msg)
		}
	}

	n.log.Warnf("Received invalid message: opcode %s", msg.Opcode)
	return nil
}

// processLookup answers the originator when the successor is the resolved
// owner of the requested identifier, and otherwise passes the lookup
// along unmodified.
func (n *Node) processLookup(lookup wire.Message) error {
	owner, ok := n.responsible(lookup.Hash)
	if !ok || !owner.Equal(n.successor) {
		n.log.Debugf("Forwarding lookup for %d to %s", lookup.Hash, n.successor)
		return n.send(lookup, n.successor)
	}

	reply := wire.Message{Opcode: wire.Reply, Hash: n.self.ID, Peer: n.successor}
	n.log.Debugf("Answering lookup for %d from %s: owner is %s", lookup.Hash, lookup.Peer, n.successor)
	return n.send(reply, lookup.Peer)
}
