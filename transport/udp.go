package transport

import (
	"net"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/go-ringdht/ring"
	"github.com/go-ringdht/wire"
)

// ErrDatagramSize reports receipt of a datagram that is not exactly one
// wire message long. Such datagrams are dropped without processing.
var ErrDatagramSize = errors.New("datagram size does not match wire message size")

// UDP owns the ring socket. Send and Receive block; any error other than
// ErrDatagramSize is fatal to the node.
type UDP struct {
	conn *net.UDPConn
	log  *zap.SugaredLogger
}

// Listen binds the ring socket on the given IPv4 address and port.
func Listen(ip [4]byte, port uint16, log *zap.SugaredLogger) (*UDP, error) {
	addr := &net.UDPAddr{IP: net.IPv4(ip[0], ip[1], ip[2], ip[3]), Port: int(port)}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "bind ring socket %s", addr)
	}
	log.Infof("Ring socket listening on %s", conn.LocalAddr())
	return &UDP{conn: conn, log: log}, nil
}

// Send delivers msg to the peer's ring endpoint as a single datagram.
func (t *UDP) Send(msg wire.Message, to ring.Peer) error {
	buf := msg.Marshal()
	if _, err := t.conn.WriteToUDP(buf[:], to.Addr()); err != nil {
		return errors.Wrapf(err, "send %s to %s", msg.Opcode, to)
	}
	return nil
}

// Receive blocks until the next datagram arrives. Datagrams of the wrong
// size yield ErrDatagramSize; the caller should drop them and keep
// receiving.
func (t *UDP) Receive() (wire.Message, *net.UDPAddr, error) {
	// One spare byte so an oversized datagram reads as more than Size.
	buf := make([]byte, wire.Size+1)
	n, from, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		return wire.Message{}, nil, errors.Wrap(err, "receive on ring socket")
	}
	if n != wire.Size {
		t.log.Warnf("Dropping %d-byte datagram from %s", n, from)
		return wire.Message{}, from, ErrDatagramSize
	}
	var raw [wire.Size]byte
	copy(raw[:], buf[:wire.Size])
	return wire.Unmarshal(raw), from, nil
}

// LocalAddr returns the bound socket address.
func (t *UDP) LocalAddr() *net.UDPAddr {
	return t.conn.LocalAddr().(*net.UDPAddr)
}

func (t *UDP) Close() error {
	return t.conn.Close()
}
