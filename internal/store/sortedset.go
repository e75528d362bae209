package store

import (
	"github.com/tidwall/btree"
)

// member is one (score, member) entry of a SortedSet's ordered index.
// Ordering is (score, member) lexicographically.
type member struct {
	score Score
	name  Key
}

func lessMember(a, b member) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.name < b.name
}

// SortedSet is a collection of (member, score) pairs ordered by
// (score, member), each member appearing at most once. It is kept
// internally as a pair of indexes — a hash from member to score, and a
// B-tree ordered by (score, member) — which must always agree; every
// mutating method here keeps that invariant, and no other code may
// reach into either index directly.
type SortedSet struct {
	byMember map[Key]Score
	ordered  *btree.BTreeG[member]
}

// NewSortedSet returns an empty SortedSet.
func NewSortedSet() *SortedSet {
	return &SortedSet{
		byMember: make(map[Key]Score),
		ordered:  btree.NewBTreeG(lessMember),
	}
}

// Add inserts or updates (score, member) pairs, returning the count of
// members that did not previously exist. When a member pre-exists its
// score is updated: it is removed from the ordered index under its old
// score and reinserted under the new one.
func (s *SortedSet) Add(pairs []struct {
	Score  Score
	Member Key
}) Count {
	var added Count
	for _, p := range pairs {
		if old, ok := s.byMember[p.Member]; ok {
			if old == p.Score {
				continue
			}
			s.ordered.Delete(member{score: old, name: p.Member})
			s.ordered.Set(member{score: p.Score, name: p.Member})
			s.byMember[p.Member] = p.Score
			continue
		}
		s.byMember[p.Member] = p.Score
		s.ordered.Set(member{score: p.Score, name: p.Member})
		added++
	}
	return added
}

// Remove deletes the given members, returning the count actually removed.
func (s *SortedSet) Remove(members []Key) Count {
	var removed Count
	for _, m := range members {
		if score, ok := s.byMember[m]; ok {
			delete(s.byMember, m)
			s.ordered.Delete(member{score: score, name: m})
			removed++
		}
	}
	return removed
}

// Card returns the number of distinct members stored.
func (s *SortedSet) Card() Count { return Count(len(s.byMember)) }

// Score returns the member's current score, if present.
func (s *SortedSet) Score(m Key) (Score, bool) {
	score, ok := s.byMember[m]
	return score, ok
}

// Rank returns the 0-based position of member in ascending
// (score, member) order, if present.
func (s *SortedSet) Rank(m Key) (Index, bool) {
	score, ok := s.byMember[m]
	if !ok {
		return 0, false
	}
	var idx Index
	found := false
	s.ordered.Scan(func(item member) bool {
		if item.score == score && item.name == m {
			found = true
			return false
		}
		idx++
		return true
	})
	if !found {
		return 0, false
	}
	return idx, true
}

// RangeByRank returns members whose positional rank in ascending
// (score, member) order falls in [start, stop] inclusive. Callers are
// responsible for negative-index normalization.
func (s *SortedSet) RangeByRank(start, stop Index) []Key {
	if start > stop {
		return nil
	}
	var out []Key
	var idx Index
	s.ordered.Scan(func(item member) bool {
		if idx >= start && idx <= stop {
			out = append(out, item.name)
		}
		idx++
		return idx <= stop
	})
	return out
}

// PopMin removes and returns up to count members with the smallest
// scores, in ascending order.
func (s *SortedSet) PopMin(count int) []struct {
	Score  Score
	Member Key
} {
	return s.popExtreme(count, false)
}

// PopMax removes and returns up to count members with the largest
// scores, in descending order.
func (s *SortedSet) PopMax(count int) []struct {
	Score  Score
	Member Key
} {
	return s.popExtreme(count, true)
}

func (s *SortedSet) popExtreme(count int, fromMax bool) []struct {
	Score  Score
	Member Key
} {
	type pair = struct {
		Score  Score
		Member Key
	}
	if count <= 0 {
		return nil
	}
	var picked []member
	scan := s.ordered.Scan
	if fromMax {
		scan = s.ordered.Reverse
	}
	scan(func(item member) bool {
		picked = append(picked, item)
		return len(picked) < count
	})

	out := make([]pair, 0, len(picked))
	for _, item := range picked {
		s.ordered.Delete(item)
		delete(s.byMember, item.name)
		out = append(out, pair{Score: item.score, Member: item.name})
	}
	return out
}
