package dht

import (
	"time"

	"go.uber.org/zap"

	"github.com/go-ringdht/ring"
	"github.com/go-ringdht/wire"
)

// baseMillis is well past the cache validity window so zero-initialized
// slots read as stale, matching a real clock.
const baseMillis = int64(1_700_000_000_000)

type sentMessage struct {
	msg wire.Message
	to  ring.Peer
}

type recordingSender struct {
	sent []sentMessage
	err  error
}

func (s *recordingSender) Send(msg wire.Message, to ring.Peer) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMessage{msg, to})
	return nil
}

func testPeer(id ring.ID) ring.Peer {
	return ring.Peer{ID: id, IP: [4]byte{10, 0, byte(id >> 8), byte(id)}, Port: 4000}
}

func newTestNode(self, predecessor, successor ring.Peer, sender Sender, maintenance Maintenance) *Node {
	n := NewNode(self, predecessor, successor, sender, maintenance, zap.NewNop().Sugar())
	n.now = func() time.Time { return time.UnixMilli(baseMillis) }
	return n
}

func (n *Node) setClock(millis int64) {
	n.now = func() time.Time { return time.UnixMilli(millis) }
}
