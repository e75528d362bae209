package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pairsOf(vals ...any) []struct {
	Score  Score
	Member Key
} {
	out := make([]struct {
		Score  Score
		Member Key
	}, 0, len(vals)/2)
	for i := 0; i < len(vals); i += 2 {
		out = append(out, struct {
			Score  Score
			Member Key
		}{Score: Score(vals[i].(int)), Member: vals[i+1].(string)})
	}
	return out
}

func TestSortedSetAddAndCard(t *testing.T) {
	zs := NewSortedSet()
	added := zs.Add(pairsOf(1, "a", 2, "b", 3, "c"))
	assert.Equal(t, Count(3), added)
	assert.Equal(t, Count(3), zs.Card())

	// re-scoring an existing member does not change cardinality.
	added = zs.Add(pairsOf(10, "a"))
	assert.Equal(t, Count(0), added)
	assert.Equal(t, Count(3), zs.Card())
	score, ok := zs.Score("a")
	assert.True(t, ok)
	assert.Equal(t, Score(10), score)
}

func TestSortedSetRangeByRank(t *testing.T) {
	zs := NewSortedSet()
	zs.Add(pairsOf(5, "e", 1, "a", 3, "c", 2, "b", 4, "d"))
	assert.Equal(t, []Key{"a", "b", "c", "d", "e"}, zs.RangeByRank(0, 4))
	assert.Equal(t, []Key{"b", "c"}, zs.RangeByRank(1, 2))
}

func TestSortedSetRank(t *testing.T) {
	zs := NewSortedSet()
	zs.Add(pairsOf(5, "e", 1, "a", 3, "c"))
	rank, ok := zs.Rank("c")
	assert.True(t, ok)
	assert.Equal(t, Index(1), rank)
	_, ok = zs.Rank("missing")
	assert.False(t, ok)
}

func TestSortedSetPopMinMax(t *testing.T) {
	zs := NewSortedSet()
	zs.Add(pairsOf(3, "c", 1, "a", 2, "b"))

	popped := zs.PopMin(2)
	assert.Len(t, popped, 2)
	assert.Equal(t, "a", popped[0].Member)
	assert.Equal(t, "b", popped[1].Member)
	assert.Equal(t, Count(1), zs.Card())

	popped = zs.PopMax(5)
	assert.Len(t, popped, 1)
	assert.Equal(t, "c", popped[0].Member)
	assert.Equal(t, Count(0), zs.Card())
}

func TestSortedSetRemove(t *testing.T) {
	zs := NewSortedSet()
	zs.Add(pairsOf(1, "a", 2, "b"))
	removed := zs.Remove([]Key{"a", "missing"})
	assert.Equal(t, Count(1), removed)
	assert.Equal(t, Count(1), zs.Card())
}
