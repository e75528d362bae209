package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateStoreDBBounds(t *testing.T) {
	ss := NewStateStore(4)
	assert.Equal(t, 4, ss.Count())

	db, ok := ss.DB(2)
	assert.True(t, ok)
	assert.NotNil(t, db)

	_, ok = ss.DB(4)
	assert.False(t, ok)
	_, ok = ss.DB(-1)
	assert.False(t, ok)
}

func TestStateFlushDBClearsOnlyOneDatabase(t *testing.T) {
	ss := NewStateStore(2)
	db0, _ := ss.DB(0)
	db1, _ := ss.DB(1)

	db0.WithKV(true, func(m map[Key]Value) { m["k"] = []byte("v") })
	db1.WithKV(true, func(m map[Key]Value) { m["k"] = []byte("v") })

	assert.NoError(t, ss.FlushDB(0))

	db0.WithKV(false, func(m map[Key]Value) { assert.Empty(t, m) })
	db1.WithKV(false, func(m map[Key]Value) { assert.Len(t, m, 1) })
}

func TestStateFlushAllClearsEverySlot(t *testing.T) {
	db := NewState()
	db.WithKV(true, func(m map[Key]Value) { m["a"] = []byte("1") })
	db.WithLists(true, func(m map[Key][]Value) []Value {
		m["l"] = []Value{[]byte("x")}
		return nil
	})
	db.WithZSets(true, func(m map[Key]*SortedSet) { m["z"] = NewSortedSet() })
	db.Concurrent().Set("c", []byte("1"))

	db.flush()

	db.WithKV(false, func(m map[Key]Value) { assert.Empty(t, m) })
	db.WithLists(false, func(m map[Key][]Value) []Value { assert.Empty(t, m); return nil })
	db.WithZSets(false, func(m map[Key]*SortedSet) { assert.Empty(t, m) })
	_, ok := db.Concurrent().Get("c")
	assert.False(t, ok)
}
