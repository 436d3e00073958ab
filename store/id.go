// Package store provides the arena-like, id-addressed persistence layer
// shared by every entity kind in the protocol (Proposal, TokenEscrow, AMM,
// SpotPool, TWAPOracle, PCWOracle). Entities reference each other by ID only,
// never by live pointer, following spec.md's Design Notes on avoiding
// cyclic ownership (§9). The KV interface offers no multi-Put transaction:
// each Put is committed on its own.
package store

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// ID is a stable, content-derived identifier for a durable object.
type ID [32]byte

// String renders the id as hex for logs and events.
func (id ID) String() string {
	return fmt.Sprintf("%x", id[:])
}

// IsZero reports whether the id is the unset zero value.
func (id ID) IsZero() bool { return id == ID{} }

// DeriveID computes a deterministic id from an entity-kind tag and a
// monotonically increasing per-kind sequence number, the same
// hash-of-(prefix||sequence) convention the teacher uses for its storage
// keys (core/state/claimable.go's claimableStorageKey/claimableNonceKey).
func DeriveID(kind string, seq uint64) ID {
	buf := make([]byte, len(kind)+8)
	copy(buf, kind)
	binary.BigEndian.PutUint64(buf[len(kind):], seq)
	hash := crypto.Keccak256(buf)
	var id ID
	copy(id[:], hash)
	return id
}
