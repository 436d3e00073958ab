package store

// KV is the minimal bucketed key-value contract the entity stores are built
// on. Two implementations are provided: MemKV (in-memory, used by tests)
// and BoltKV (go.etcd.io/bbolt-backed, used when durability across process
// restarts is required).
type KV interface {
	Get(bucket string, key []byte) ([]byte, bool, error)
	Put(bucket string, key []byte, value []byte) error
	Delete(bucket string, key []byte) error
	// NextSeq returns a fresh, monotonically increasing sequence number
	// scoped to bucket, starting at 0.
	NextSeq(bucket string) (uint64, error)
	// ForEach iterates every key/value pair in bucket in key order. The
	// callback must not mutate the store.
	ForEach(bucket string, fn func(key, value []byte) error) error
}
