package store

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// zmember is the gob-friendly flattening of a SortedSet entry.
type zmember struct {
	Score  Score
	Member Key
}

// dbSnapshot is a gob-encodable copy of one State's contents. Bloom
// filters serialize through bits-and-blooms/bloom/v3's own
// GobEncode/GobDecode support; HyperLogLogs through the GobEncode pair
// in hll_gob.go.
type dbSnapshot struct {
	KV         map[Key]Value
	Sets       map[Key][]string
	Lists      map[Key][]Value
	Hashes     map[Key]map[Key]Value
	ZSets      map[Key][]zmember
	Blooms     map[Key]*Bloom
	Stacks     map[Key][]Value
	HLLs       map[Key]*HyperLogLog
	Concurrent map[Key]Value
}

// Snapshot is a gob-encodable copy of an entire StateStore.
type Snapshot struct {
	Databases []dbSnapshot
}

// Export captures a point-in-time copy of every database, suitable
// for gob encoding by the snapshot package.
func (ss *StateStore) Export() Snapshot {
	dbs := ss.Snapshot()
	out := Snapshot{Databases: make([]dbSnapshot, len(dbs))}
	for i, db := range dbs {
		out.Databases[i] = db.export()
	}
	return out
}

func (s *State) export() dbSnapshot {
	snap := dbSnapshot{
		Hashes: make(map[Key]map[Key]Value),
		ZSets:  make(map[Key][]zmember),
	}

	s.kvMu.RLock()
	snap.KV = make(map[Key]Value, len(s.kv))
	for k, v := range s.kv {
		snap.KV[k] = v
	}
	s.kvMu.RUnlock()

	s.setsMu.RLock()
	snap.Sets = make(map[Key][]string, len(s.sets))
	for k, set := range s.sets {
		snap.Sets[k] = set.ToSlice()
	}
	s.setsMu.RUnlock()

	s.listsMu.RLock()
	snap.Lists = make(map[Key][]Value, len(s.lists))
	for k, list := range s.lists {
		snap.Lists[k] = append([]Value(nil), list...)
	}
	s.listsMu.RUnlock()

	s.hashesMu.RLock()
	for k, h := range s.hashes {
		cp := make(map[Key]Value, len(h))
		for f, v := range h {
			cp[f] = v
		}
		snap.Hashes[k] = cp
	}
	s.hashesMu.RUnlock()

	s.zsetsMu.RLock()
	for k, zs := range s.zsets {
		members := zs.RangeByRank(0, zs.Card()-1)
		entries := make([]zmember, len(members))
		for i, m := range members {
			score, _ := zs.Score(m)
			entries[i] = zmember{Score: score, Member: m}
		}
		snap.ZSets[k] = entries
	}
	s.zsetsMu.RUnlock()

	s.bloomsMu.RLock()
	snap.Blooms = make(map[Key]*Bloom, len(s.blooms))
	for k, b := range s.blooms {
		snap.Blooms[k] = b
	}
	s.bloomsMu.RUnlock()

	s.stacksMu.RLock()
	snap.Stacks = make(map[Key][]Value, len(s.stacks))
	for k, st := range s.stacks {
		snap.Stacks[k] = append([]Value(nil), st.items...)
	}
	s.stacksMu.RUnlock()

	s.hllMu.RLock()
	snap.HLLs = make(map[Key]*HyperLogLog, len(s.hlls))
	for k, h := range s.hlls {
		snap.HLLs[k] = h
	}
	s.hllMu.RUnlock()

	snap.Concurrent = make(map[Key]Value)
	for i := range s.concurrent.shards {
		shard := s.concurrent.shards[i]
		shard.mu.RLock()
		for k, v := range shard.data {
			snap.Concurrent[k] = v
		}
		shard.mu.RUnlock()
	}

	return snap
}

// Import replaces every database's contents with the given snapshot,
// growing the StateStore if the snapshot has more databases than the
// current one.
func (ss *StateStore) Import(snap Snapshot) {
	ss.mu.Lock()
	for len(ss.dbs) < len(snap.Databases) {
		ss.dbs = append(ss.dbs, NewState())
	}
	dbs := ss.dbs
	ss.mu.Unlock()

	for i, dbSnap := range snap.Databases {
		dbs[i].restore(dbSnap)
	}
}

func (s *State) restore(snap dbSnapshot) {
	s.kvMu.Lock()
	s.kv = snap.KV
	if s.kv == nil {
		s.kv = make(map[Key]Value)
	}
	s.kvMu.Unlock()

	s.setsMu.Lock()
	s.sets = make(map[Key]mapset.Set[string], len(snap.Sets))
	for k, members := range snap.Sets {
		s.sets[k] = mapset.NewThreadUnsafeSet(members...)
	}
	s.setsMu.Unlock()

	s.listsMu.Lock()
	s.lists = snap.Lists
	if s.lists == nil {
		s.lists = make(map[Key][]Value)
	}
	s.listsMu.Unlock()

	s.hashesMu.Lock()
	s.hashes = snap.Hashes
	if s.hashes == nil {
		s.hashes = make(map[Key]map[Key]Value)
	}
	s.hashesMu.Unlock()

	s.zsetsMu.Lock()
	s.zsets = make(map[Key]*SortedSet, len(snap.ZSets))
	for k, entries := range snap.ZSets {
		pairs := make([]struct {
			Score  Score
			Member Key
		}, len(entries))
		for i, e := range entries {
			pairs[i] = struct {
				Score  Score
				Member Key
			}{Score: e.Score, Member: e.Member}
		}
		zs := NewSortedSet()
		zs.Add(pairs)
		s.zsets[k] = zs
	}
	s.zsetsMu.Unlock()

	s.bloomsMu.Lock()
	s.blooms = snap.Blooms
	if s.blooms == nil {
		s.blooms = make(map[Key]*Bloom)
	}
	s.bloomsMu.Unlock()

	s.stacksMu.Lock()
	s.stacks = make(map[Key]*Stack, len(snap.Stacks))
	for k, items := range snap.Stacks {
		s.stacks[k] = &Stack{items: items}
	}
	s.stacksMu.Unlock()

	s.hllMu.Lock()
	s.hlls = snap.HLLs
	if s.hlls == nil {
		s.hlls = make(map[Key]*HyperLogLog)
	}
	s.hllMu.Unlock()

	cm := NewConcurrentMap()
	for k, v := range snap.Concurrent {
		cm.Set(k, v)
	}
	s.concurrent = cm
}
