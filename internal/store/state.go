package store

import (
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// State is one numbered logical database: nine independently-locked
// typed slots plus the blocking-command receipt registry. Each slot
// has its own sync.RWMutex (concurrent_kv instead locks per shard
// inside ConcurrentMap) rather than sharing one lock across types,
// so e.g. a long HGETALL never blocks an unrelated LPUSH.
type State struct {
	kvMu sync.RWMutex
	kv   map[Key]Value

	setsMu sync.RWMutex
	sets   map[Key]mapset.Set[string]

	listsMu sync.RWMutex
	lists   map[Key][]Value

	hashesMu sync.RWMutex
	hashes   map[Key]map[Key]Value

	zsetsMu sync.RWMutex
	zsets   map[Key]*SortedSet

	bloomsMu sync.RWMutex
	blooms   map[Key]*Bloom

	stacksMu sync.RWMutex
	stacks   map[Key]*Stack

	hllMu sync.RWMutex
	hlls  map[Key]*HyperLogLog

	concurrent *ConcurrentMap

	Receipts *ReceiptRegistry
}

// NewState returns an empty logical database.
func NewState() *State {
	return &State{
		kv:         make(map[Key]Value),
		sets:       make(map[Key]mapset.Set[string]),
		lists:      make(map[Key][]Value),
		hashes:     make(map[Key]map[Key]Value),
		zsets:      make(map[Key]*SortedSet),
		blooms:     make(map[Key]*Bloom),
		stacks:     make(map[Key]*Stack),
		hlls:       make(map[Key]*HyperLogLog),
		concurrent: NewConcurrentMap(),
		Receipts:   NewReceiptRegistry(),
	}
}

// WithKV runs fn under the kv slot's lock (write if write, read otherwise).
func (s *State) WithKV(write bool, fn func(map[Key]Value)) {
	if write {
		s.kvMu.Lock()
		defer s.kvMu.Unlock()
	} else {
		s.kvMu.RLock()
		defer s.kvMu.RUnlock()
	}
	fn(s.kv)
}

// WithSets runs fn under the sets slot's lock.
func (s *State) WithSets(write bool, fn func(map[Key]mapset.Set[string])) {
	if write {
		s.setsMu.Lock()
		defer s.setsMu.Unlock()
	} else {
		s.setsMu.RLock()
		defer s.setsMu.RUnlock()
	}
	fn(s.sets)
}

// WithLists runs fn under the lists slot's lock.
func (s *State) WithLists(write bool, fn func(map[Key][]Value) []Value) []Value {
	if write {
		s.listsMu.Lock()
		defer s.listsMu.Unlock()
	} else {
		s.listsMu.RLock()
		defer s.listsMu.RUnlock()
	}
	return fn(s.lists)
}

// WithHashes runs fn under the hashes slot's lock.
func (s *State) WithHashes(write bool, fn func(map[Key]map[Key]Value)) {
	if write {
		s.hashesMu.Lock()
		defer s.hashesMu.Unlock()
	} else {
		s.hashesMu.RLock()
		defer s.hashesMu.RUnlock()
	}
	fn(s.hashes)
}

// WithZSets runs fn under the zsets slot's lock.
func (s *State) WithZSets(write bool, fn func(map[Key]*SortedSet)) {
	if write {
		s.zsetsMu.Lock()
		defer s.zsetsMu.Unlock()
	} else {
		s.zsetsMu.RLock()
		defer s.zsetsMu.RUnlock()
	}
	fn(s.zsets)
}

// WithBlooms runs fn under the blooms slot's lock.
func (s *State) WithBlooms(write bool, fn func(map[Key]*Bloom)) {
	if write {
		s.bloomsMu.Lock()
		defer s.bloomsMu.Unlock()
	} else {
		s.bloomsMu.RLock()
		defer s.bloomsMu.RUnlock()
	}
	fn(s.blooms)
}

// WithStacks runs fn under the stacks slot's lock.
func (s *State) WithStacks(write bool, fn func(map[Key]*Stack)) {
	if write {
		s.stacksMu.Lock()
		defer s.stacksMu.Unlock()
	} else {
		s.stacksMu.RLock()
		defer s.stacksMu.RUnlock()
	}
	fn(s.stacks)
}

// WithHLLs runs fn under the hyperloglog slot's lock.
func (s *State) WithHLLs(write bool, fn func(map[Key]*HyperLogLog)) {
	if write {
		s.hllMu.Lock()
		defer s.hllMu.Unlock()
	} else {
		s.hllMu.RLock()
		defer s.hllMu.RUnlock()
	}
	fn(s.hlls)
}

// Concurrent returns the sharded concurrent_kv slot (CGET/CSET/CDEL).
// It has no slot-level lock of its own; ConcurrentMap shards
// internally.
func (s *State) Concurrent() *ConcurrentMap { return s.concurrent }

// flush clears every slot in place, used by FLUSHALL/FLUSHDB.
func (s *State) flush() {
	s.kvMu.Lock()
	s.kv = make(map[Key]Value)
	s.kvMu.Unlock()

	s.setsMu.Lock()
	s.sets = make(map[Key]mapset.Set[string])
	s.setsMu.Unlock()

	s.listsMu.Lock()
	s.lists = make(map[Key][]Value)
	s.listsMu.Unlock()

	s.hashesMu.Lock()
	s.hashes = make(map[Key]map[Key]Value)
	s.hashesMu.Unlock()

	s.zsetsMu.Lock()
	s.zsets = make(map[Key]*SortedSet)
	s.zsetsMu.Unlock()

	s.bloomsMu.Lock()
	s.blooms = make(map[Key]*Bloom)
	s.bloomsMu.Unlock()

	s.stacksMu.Lock()
	s.stacks = make(map[Key]*Stack)
	s.stacksMu.Unlock()

	s.hllMu.Lock()
	s.hlls = make(map[Key]*HyperLogLog)
	s.hllMu.Unlock()

	s.concurrent = NewConcurrentMap()
}

// StateStore is the set of numbered logical databases a connection
// can SELECT between.
type StateStore struct {
	mu  sync.RWMutex
	dbs []*State
}

// NewStateStore returns a store with n empty databases.
func NewStateStore(n int) *StateStore {
	if n <= 0 {
		n = 1
	}
	dbs := make([]*State, n)
	for i := range dbs {
		dbs[i] = NewState()
	}
	return &StateStore{dbs: dbs}
}

// DB returns the logical database at index, and whether index is valid.
func (ss *StateStore) DB(index int) (*State, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	if index < 0 || index >= len(ss.dbs) {
		return nil, false
	}
	return ss.dbs[index], true
}

// Count returns the number of logical databases.
func (ss *StateStore) Count() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.dbs)
}

// FlushDB clears a single logical database in place.
func (ss *StateStore) FlushDB(index int) error {
	db, ok := ss.DB(index)
	if !ok {
		return fmt.Errorf("store: database index %d out of range", index)
	}
	db.flush()
	return nil
}

// FlushAll clears every logical database in place.
func (ss *StateStore) FlushAll() {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	for _, db := range ss.dbs {
		db.flush()
	}
}

// Snapshot returns the current slice of databases for the snapshot
// package to serialize. Callers must not mutate the returned slice.
func (ss *StateStore) Snapshot() []*State {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	out := make([]*State, len(ss.dbs))
	copy(out, ss.dbs)
	return out
}
