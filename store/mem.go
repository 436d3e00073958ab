package store

import (
	"sort"
	"sync"
)

// MemKV is an in-memory KV implementation guarded by a single RWMutex,
// following the same lock-protected-map convention the teacher uses for its
// token registries (native/escrow/types.go's tokenRegistry).
type MemKV struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
	seqs    map[string]uint64
}

// NewMemKV constructs an empty in-memory store.
func NewMemKV() *MemKV {
	return &MemKV{
		buckets: make(map[string]map[string][]byte),
		seqs:    make(map[string]uint64),
	}
}

func (m *MemKV) Get(bucket string, key []byte) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return nil, false, nil
	}
	v, ok := b[string(key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemKV) Put(bucket string, key []byte, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		b = make(map[string][]byte)
		m.buckets[bucket] = b
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	b[string(key)] = stored
	return nil
}

func (m *MemKV) Delete(bucket string, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.buckets[bucket]; ok {
		delete(b, string(key))
	}
	return nil
}

func (m *MemKV) NextSeq(bucket string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := m.seqs[bucket]
	m.seqs[bucket] = seq + 1
	return seq, nil
}

func (m *MemKV) ForEach(bucket string, fn func(key, value []byte) error) error {
	m.mu.RLock()
	b, ok := m.buckets[bucket]
	if !ok {
		m.mu.RUnlock()
		return nil
	}
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	snapshot := make(map[string][]byte, len(b))
	for _, k := range keys {
		snapshot[k] = b[k]
	}
	m.mu.RUnlock()

	for _, k := range keys {
		if err := fn([]byte(k), snapshot[k]); err != nil {
			return err
		}
	}
	return nil
}
