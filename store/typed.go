package store

import (
	"encoding/json"
	"fmt"
)

// Versioned is embedded by persisted entities to carry their id and a
// version number. Nothing in this package changes Version; it is stored as
// the caller sets it.
type Versioned struct {
	ID      ID     `json:"id"`
	Version uint64 `json:"version"`
}

// Typed wraps a KV with a fixed bucket name and JSON (de)serialization for
// one entity kind T. T must embed Versioned.
type Typed[T any] struct {
	kv     KV
	bucket string
}

// NewTyped constructs a typed entity store scoped to bucket.
func NewTyped[T any](kv KV, bucket string) *Typed[T] {
	return &Typed[T]{kv: kv, bucket: bucket}
}

// NextID derives a fresh id for this entity kind from the store's own
// monotonic sequence counter.
func (t *Typed[T]) NextID() (ID, error) {
	seq, err := t.kv.NextSeq(t.bucket)
	if err != nil {
		return ID{}, err
	}
	return DeriveID(t.bucket, seq), nil
}

// Get loads the entity stored under id.
func (t *Typed[T]) Get(id ID) (*T, bool, error) {
	raw, ok, err := t.kv.Get(t.bucket, id[:])
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false, fmt.Errorf("store: decode %s: %w", t.bucket, err)
	}
	return &value, true, nil
}

// Put persists value under id as given; it does not change Version
// (entities embed Versioned directly so callers set it before calling Put).
func (t *Typed[T]) Put(id ID, value *T) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", t.bucket, err)
	}
	return t.kv.Put(t.bucket, id[:], encoded)
}

// ForEach iterates every entity of this kind.
func (t *Typed[T]) ForEach(fn func(id ID, value *T) error) error {
	return t.kv.ForEach(t.bucket, func(key, raw []byte) error {
		var value T
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("store: decode %s: %w", t.bucket, err)
		}
		var id ID
		copy(id[:], key)
		return fn(id, &value)
	})
}
