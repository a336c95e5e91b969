package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/go-ringdht/ring"
)

// Opcode selects how a message's fields are interpreted.
type Opcode uint8

const (
	// Lookup requests the owner of an identifier. Hash is the requested
	// identifier, Peer the lookup's originator.
	Lookup Opcode = iota
	// Reply answers a lookup. Peer is the responsible peer, Hash that
	// peer's predecessor identifier.
	Reply
	// Stabilize probes a successor. Peer is the originator, Hash its
	// identifier (redundant, but avoids confusion).
	Stabilize
	// Notify carries a candidate successor for the recipient.
	Notify
	// Join announces a joining peer. Peer is the joiner.
	Join

	numOpcodes
)

// Valid reports whether o names a known message type. The codec never
// checks this; validation happens in the message processor.
func (o Opcode) Valid() bool {
	return o < numOpcodes
}

func (o Opcode) String() string {
	switch o {
	case Lookup:
		return "LOOKUP"
	case Reply:
		return "REPLY"
	case Stabilize:
		return "STABILIZE"
	case Notify:
		return "NOTIFY"
	case Join:
		return "JOIN"
	default:
		return fmt.Sprintf("INVALID(%d)", uint8(o))
	}
}

// Size is the length in bytes of every datagram, regardless of opcode.
// There are no variable-length fields, no length prefix and no checksum.
const Size = 11

// Message is the in-memory form of one ring datagram. Field semantics
// depend on the opcode; see the opcode docs.
type Message struct {
	Opcode Opcode
	Hash   ring.ID
	Peer   ring.Peer
}

// Marshal produces the on-wire form: the opcode byte followed by the
// multi-byte fields in network byte order.
//
//	byte 0     opcode
//	bytes 1-2  hash
//	bytes 3-4  peer id
//	bytes 5-8  peer IPv4 address
//	bytes 9-10 peer port
func (m Message) Marshal() [Size]byte {
	var b [Size]byte
	b[0] = byte(m.Opcode)
	binary.BigEndian.PutUint16(b[1:3], uint16(m.Hash))
	binary.BigEndian.PutUint16(b[3:5], uint16(m.Peer.ID))
	copy(b[5:9], m.Peer.IP[:])
	binary.BigEndian.PutUint16(b[9:11], m.Peer.Port)
	return b
}

// Unmarshal is the exact inverse of Marshal. It accepts any bit pattern,
// including unknown opcodes; the transformation never fails.
func Unmarshal(b [Size]byte) Message {
	var m Message
	m.Opcode = Opcode(b[0])
	m.Hash = ring.ID(binary.BigEndian.Uint16(b[1:3]))
	m.Peer.ID = ring.ID(binary.BigEndian.Uint16(b[3:5]))
	copy(m.Peer.IP[:], b[5:9])
	m.Peer.Port = binary.BigEndian.Uint16(b[9:11])
	return m
}
