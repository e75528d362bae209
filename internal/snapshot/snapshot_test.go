package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/kvforge/respkv/internal/logging"
	"github.com/kvforge/respkv/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.rodb")

	ss := store.NewStateStore(1)
	db, _ := ss.DB(0)
	db.WithKV(true, func(m map[store.Key]store.Value) { m["k"] = []byte("v") })

	task := &Task{Path: path, Store: ss, Log: logging.New(logging.Options{})}
	require.NoError(t, task.Save())

	snap, found, err := Load(path)
	require.NoError(t, err)
	assert.True(t, found)

	restored := store.NewStateStore(1)
	restored.Import(snap)
	rdb, _ := restored.DB(0)
	rdb.WithKV(false, func(m map[store.Key]store.Value) { assert.Equal(t, []byte("v"), m["k"]) })
}

func TestLoadMissingFileYieldsEmpty(t *testing.T) {
	_, found, err := Load(filepath.Join(t.TempDir(), "does-not-exist.rodb"))
	require.NoError(t, err)
	assert.False(t, found)
}
