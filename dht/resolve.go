package dht

import "github.com/go-ringdht/ring"

// Responsible resolves the owner of id from local knowledge: self first,
// then the successor, then any fresh cached claim in table order.
//
// ok == false is not an error; it means no owner could be determined and
// the caller should issue a network lookup. It does not mean the
// predecessor owns id.
func (n *Node) Responsible(id ring.ID) (ring.Peer, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.responsible(id)
}

func (n *Node) responsible(id ring.ID) (ring.Peer, bool) {
	if ring.IsResponsible(n.predecessor.ID, n.self.ID, id) {
		return n.self, true
	}
	if ring.IsResponsible(n.self.ID, n.successor.ID, id) {
		return n.successor, true
	}
	return n.cache.scan(id, n.now().UnixMilli())
}
