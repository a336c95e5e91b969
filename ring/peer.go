package ring

import (
	"fmt"
	"net"
	"strconv"

	"github.com/multiformats/go-multiaddr"
	"github.com/pkg/errors"
)

// Peer is a complete description of a ring participant: its identifier
// and the IPv4 endpoint its ring socket listens on.
//
// Peer is an immutable value type compared field-wise. The zero value is
// the "no information" sentinel used for unfilled predecessor/successor
// slots; it must never be treated as a reachable address.
type Peer struct {
	ID   ID
	IP   [4]byte
	Port uint16
}

// Equal compares two peers by structural field equality.
func (p Peer) Equal(other Peer) bool {
	return p == other
}

// IsZero reports whether p is the "no information" sentinel.
func (p Peer) IsZero() bool {
	return p == Peer{}
}

// Addr derives the UDP address for message transmission.
func (p Peer) Addr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(p.IP[0], p.IP[1], p.IP[2], p.IP[3]), Port: int(p.Port)}
}

func (p Peer) String() string {
	return fmt.Sprintf("%d@%d.%d.%d.%d:%d", p.ID, p.IP[0], p.IP[1], p.IP[2], p.IP[3], p.Port)
}

// ParseAddr extracts the IPv4 address and UDP port from a ring endpoint
// multiaddr such as /ip4/127.0.0.1/udp/9000.
func ParseAddr(s string) ([4]byte, uint16, error) {
	var ip [4]byte
	addr, err := multiaddr.NewMultiaddr(s)
	if err != nil {
		return ip, 0, errors.Wrapf(err, "parse endpoint %q", s)
	}
	ipStr, err := addr.ValueForProtocol(multiaddr.P_IP4)
	if err != nil {
		return ip, 0, errors.Wrapf(err, "endpoint %q has no ip4 component", s)
	}
	parsed := net.ParseIP(ipStr).To4()
	if parsed == nil {
		return ip, 0, errors.Errorf("endpoint %q is not an IPv4 address", s)
	}
	copy(ip[:], parsed)
	portStr, err := addr.ValueForProtocol(multiaddr.P_UDP)
	if err != nil {
		return ip, 0, errors.Wrapf(err, "endpoint %q has no udp component", s)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return ip, 0, errors.Wrapf(err, "endpoint %q has an invalid port", s)
	}
	return ip, uint16(port), nil
}
