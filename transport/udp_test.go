package transport_test

import (
	"errors"
	"net"
	"testing"

	"go.uber.org/zap"

	"github.com/go-ringdht/ring"
	"github.com/go-ringdht/transport"
	"github.com/go-ringdht/wire"
)

func listen(t *testing.T) *transport.UDP {
	t.Helper()
	u, err := transport.Listen([4]byte{127, 0, 0, 1}, 0, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("Listen returned error: %s", err)
	}
	t.Cleanup(func() { u.Close() })
	return u
}

func peerFor(u *transport.UDP) ring.Peer {
	return ring.Peer{IP: [4]byte{127, 0, 0, 1}, Port: uint16(u.LocalAddr().Port)}
}

func TestSendReceiveRoundTrip(t *testing.T) {
	a := listen(t)
	b := listen(t)

	sent := wire.Message{
		Opcode: wire.Lookup,
		Hash:   4242,
		Peer:   ring.Peer{ID: 17, IP: [4]byte{127, 0, 0, 1}, Port: 9000},
	}
	if err := a.Send(sent, peerFor(b)); err != nil {
		t.Fatalf("Send returned error: %s", err)
	}

	got, from, err := b.Receive()
	if err != nil {
		t.Fatalf("Receive returned error: %s", err)
	}
	if got != sent {
		t.Errorf("received %v, want %v", got, sent)
	}
	if from == nil || from.Port != a.LocalAddr().Port {
		t.Errorf("sender address = %v, want port %d", from, a.LocalAddr().Port)
	}
}

func TestWrongSizeDatagramsAreRejected(t *testing.T) {
	b := listen(t)

	raw, err := net.DialUDP("udp4", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: b.LocalAddr().Port})
	if err != nil {
		t.Fatalf("DialUDP returned error: %s", err)
	}
	defer raw.Close()

	for _, size := range []int{0, 5, 10, 12, 64} {
		if size == 0 {
			// A zero-length datagram is still a datagram.
			if _, err := raw.Write(nil); err != nil {
				t.Fatalf("Write returned error: %s", err)
			}
		} else {
			if _, err := raw.Write(make([]byte, size)); err != nil {
				t.Fatalf("Write returned error: %s", err)
			}
		}
		if _, _, err := b.Receive(); !errors.Is(err, transport.ErrDatagramSize) {
			t.Errorf("%d-byte datagram: Receive returned %v, want ErrDatagramSize", size, err)
		}
	}

	// The socket keeps working after rejects.
	a := listen(t)
	msg := wire.Message{Opcode: wire.Reply, Hash: 1, Peer: ring.Peer{ID: 2, IP: [4]byte{127, 0, 0, 1}, Port: 3}}
	if err := a.Send(msg, peerFor(b)); err != nil {
		t.Fatalf("Send returned error: %s", err)
	}
	got, _, err := b.Receive()
	if err != nil {
		t.Fatalf("Receive returned error: %s", err)
	}
	if got != msg {
		t.Errorf("received %v, want %v", got, msg)
	}
}
