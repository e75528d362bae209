package store

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotGobRoundTrip(t *testing.T) {
	ss := NewStateStore(2)
	db0, _ := ss.DB(0)
	db0.WithKV(true, func(m map[Key]Value) { m["k"] = []byte("v") })
	db0.WithZSets(true, func(m map[Key]*SortedSet) {
		zs := NewSortedSet()
		zs.Add([]struct {
			Score  Score
			Member Key
		}{{Score: 1, Member: "a"}, {Score: 2, Member: "b"}})
		m["z"] = zs
	})
	db0.Concurrent().Set("c", []byte("cv"))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(ss.Export()))

	var snap Snapshot
	require.NoError(t, gob.NewDecoder(&buf).Decode(&snap))

	restored := NewStateStore(1)
	restored.Import(snap)

	rdb0, ok := restored.DB(0)
	require.True(t, ok)
	rdb0.WithKV(false, func(m map[Key]Value) { assert.Equal(t, []byte("v"), m["k"]) })
	rdb0.WithZSets(false, func(m map[Key]*SortedSet) {
		assert.Equal(t, []Key{"a", "b"}, m["z"].RangeByRank(0, 1))
	})
	v, ok := rdb0.Concurrent().Get("c")
	assert.True(t, ok)
	assert.Equal(t, []byte("cv"), v)
}
