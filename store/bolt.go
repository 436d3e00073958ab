package store

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

const seqKeySuffix = "\x00__seq__"

// BoltKV durably persists entities in a single bbolt file, one bucket per
// entity kind, mirroring the teacher's preference for an embedded,
// transactional store (go.etcd.io/bbolt is already a teacher dependency).
// Unlike the teacher's Merkle-trie-backed state.Manager (which exists to
// produce consensus state roots — out of scope per spec.md §1), BoltKV has
// no root-hashing concern: it is a plain durable map.
type BoltKV struct {
	db *bolt.DB
}

// OpenBoltKV opens (creating if absent) a bbolt database at path.
func OpenBoltKV(path string) (*BoltKV, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bbolt: %w", err)
	}
	return &BoltKV{db: db}, nil
}

// Close releases the underlying file handle.
func (b *BoltKV) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *BoltKV) Get(bucket string, key []byte) ([]byte, bool, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return nil
		}
		v := bkt.Get(key)
		if v == nil {
			return nil
		}
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

func (b *BoltKV) Put(bucket string, key []byte, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		return bkt.Put(key, value)
	})
}

func (b *BoltKV) Delete(bucket string, key []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return nil
		}
		return bkt.Delete(key)
	})
}

func (b *BoltKV) NextSeq(bucket string) (uint64, error) {
	var next uint64
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		key := []byte(seqKeySuffix)
		var current uint64
		if v := bkt.Get(key); v != nil {
			current = binary.BigEndian.Uint64(v)
		}
		next = current
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, current+1)
		return bkt.Put(key, buf)
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (b *BoltKV) ForEach(bucket string, fn func(key, value []byte) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return nil
		}
		return bkt.ForEach(func(k, v []byte) error {
			if string(k) == seqKeySuffix {
				return nil
			}
			return fn(k, v)
		})
	})
}
