package ring

import (
	"crypto/sha256"
	"encoding/binary"
)

// HashOf maps a key to its ring identifier: the first two bytes of the
// key's SHA-256 digest, interpreted in network byte order. Collisions in
// the 16-bit space are an accepted limitation.
func HashOf(key []byte) ID {
	digest := sha256.Sum256(key)
	return ID(binary.BigEndian.Uint16(digest[:2]))
}
