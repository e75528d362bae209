package store

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// concurrentShardCount is the number of independently-locked shards
// backing ConcurrentMap. Keeping it a power of two lets shard
// selection use a mask instead of a modulo.
const concurrentShardCount = 32

type concurrentShard struct {
	mu   sync.RWMutex
	data map[Key]Value
}

// ConcurrentMap is a sharded, reader-optimized string map exposed
// through CGET/CSET/CDEL. It is a distinct slot from the plain kv map:
// callers that want shard-level concurrency instead of a single
// whole-map RWMutex use this type.
type ConcurrentMap struct {
	shards [concurrentShardCount]*concurrentShard
}

// NewConcurrentMap returns an empty ConcurrentMap with all shards
// initialized.
func NewConcurrentMap() *ConcurrentMap {
	cm := &ConcurrentMap{}
	for i := range cm.shards {
		cm.shards[i] = &concurrentShard{data: make(map[Key]Value)}
	}
	return cm
}

func (cm *ConcurrentMap) shardFor(key Key) *concurrentShard {
	h := xxhash.Sum64String(key)
	return cm.shards[h&(concurrentShardCount-1)]
}

// Get returns the value stored at key, if any.
func (cm *ConcurrentMap) Get(key Key) (Value, bool) {
	shard := cm.shardFor(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	v, ok := shard.data[key]
	return v, ok
}

// Set stores value at key, reporting whether the key was newly created.
func (cm *ConcurrentMap) Set(key Key, value Value) bool {
	shard := cm.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	_, existed := shard.data[key]
	shard.data[key] = value
	return !existed
}

// Delete removes key, reporting whether it was present.
func (cm *ConcurrentMap) Delete(key Key) bool {
	shard := cm.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	_, existed := shard.data[key]
	delete(shard.data, key)
	return existed
}
