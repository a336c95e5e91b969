package ring

// Size of the identifier space. Identifiers live in [0, Size).
//
// The space is deliberately small; keys may collide on the same
// identifier and the system accepts that.
const Size = 1 << 16

// ID is a position on the identifier ring.
type ID uint16

// Distance returns the clockwise distance from one identifier to another.
// The uint16 subtraction wraps, which is exactly the modular arithmetic
// the ring needs.
func Distance(from, to ID) ID {
	return to - from
}

// IsResponsible reports whether peer owns id, given peer's predecessor.
// A peer that is its own predecessor is the sole known node and owns
// everything. Otherwise peer owns id when it is closer to id, going
// clockwise, than its predecessor is.
//
// A false result does not imply the predecessor owns id; the true owner
// may be anywhere further around the ring.
func IsResponsible(peerPredecessor, peer, id ID) bool {
	return peerPredecessor == peer || Distance(id, peer) < Distance(id, peerPredecessor)
}
