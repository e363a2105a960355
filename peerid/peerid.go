// Package peerid derives the uint64 peer identifiers movabletree.Replica
// needs from random UUIDs, so callers don't have to invent a peer-naming
// scheme of their own to try the library.
package peerid

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// New returns a random peer ID suitable for movabletree.NewReplicaE or
// movabletree.NewReplicaM, derived from the first 8 bytes of a freshly
// generated UUID v4. Collisions are exactly as unlikely as a UUID
// collision truncated to 64 bits, which is acceptable for a library that
// otherwise leaves peer-ID allocation entirely up to the caller.
func New() uint64 {
	id := uuid.New()
	return binary.LittleEndian.Uint64(id[:8])
}
