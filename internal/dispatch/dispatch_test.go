package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/proto"
	"github.com/kvforge/respkv/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() *Context {
	ss := store.NewStateStore(4)
	db, _ := ss.DB(0)
	return &Context{Ctx: context.Background(), DB: db, DBIndex: 0, Store: ss}
}

func run(t *testing.T, c *Context, args ...string) store.ReturnValue {
	t.Helper()
	elems := make([]proto.Value, len(args))
	for i, a := range args {
		elems[i] = proto.Bulk([]byte(a))
	}
	cmd, err := command.Parse(proto.Arr(elems))
	require.NoError(t, err)
	return Dispatch(c, cmd)
}

func TestKVLaws(t *testing.T) {
	c := newTestContext()
	run(t, c, "SET", "k", "v")
	assert.Equal(t, store.StringRes([]byte("v")), run(t, c, "GET", "k"))

	run(t, c, "DEL", "k")
	assert.Equal(t, store.Nil(), run(t, c, "GET", "k"))

	run(t, c, "SET", "old", "payload")
	run(t, c, "RENAME", "old", "new")
	assert.Equal(t, store.StringRes([]byte("payload")), run(t, c, "GET", "new"))
	assert.Equal(t, store.Nil(), run(t, c, "GET", "old"))
}

func TestSetDeterminism(t *testing.T) {
	c := newTestContext()
	assert.Equal(t, store.IntRes(2), run(t, c, "SADD", "s", "a", "b"))
	assert.Equal(t, store.IntRes(0), run(t, c, "SADD", "s", "a", "b"))
}

func TestSortedSetOrderAndScore(t *testing.T) {
	c := newTestContext()
	run(t, c, "ZADD", "z", "2", "b")
	run(t, c, "ZADD", "z", "1", "a")
	run(t, c, "ZADD", "z", "1", "a") // rescoring same value is a no-op on cardinality

	got := run(t, c, "ZRANGE", "z", "0", "-1")
	assert.Equal(t, store.MultiStringRes([]store.Value{[]byte("a"), []byte("b")}), got)
	assert.Equal(t, store.IntRes(2), run(t, c, "ZCARD", "z"))
	assert.Equal(t, store.IntRes(1), run(t, c, "ZSCORE", "z", "a"))
}

func TestListSemantics(t *testing.T) {
	c := newTestContext()
	assert.Equal(t, store.IntRes(3), run(t, c, "LPUSH", "k", "a", "b", "c"))
	assert.Equal(t, store.MultiStringRes([]store.Value{[]byte("c"), []byte("b"), []byte("a")}),
		run(t, c, "LRANGE", "k", "0", "-1"))
	assert.Equal(t, store.StringRes([]byte("c")), run(t, c, "LPOP", "k"))
}

func TestRPopLPushSingleElementIsUnchanged(t *testing.T) {
	c := newTestContext()
	run(t, c, "LPUSH", "k", "only")
	got := run(t, c, "RPOPLPUSH", "k", "k")
	assert.Equal(t, store.StringRes([]byte("only")), got)
	assert.Equal(t, store.IntRes(1), run(t, c, "LLEN", "k"))
}

func TestBloomOneSided(t *testing.T) {
	c := newTestContext()
	run(t, c, "BINSERT", "b", "v")
	assert.Equal(t, store.IntRes(1), run(t, c, "BCONTAINS", "b", "v"))
}

func TestBlockingBLPOPWakesOnPush(t *testing.T) {
	c := newTestContext()
	done := make(chan store.ReturnValue, 1)
	go func() {
		done <- run(t, c, "BLPOP", "k", "1")
	}()
	time.Sleep(50 * time.Millisecond)
	run(t, c, "LPUSH", "k", "v")

	select {
	case got := <-done:
		assert.Equal(t, store.StringRes([]byte("v")), got)
	case <-time.After(2 * time.Second):
		t.Fatal("BLPOP did not wake after push")
	}
	assert.Equal(t, store.IntRes(0), run(t, c, "LLEN", "k"))
}

func TestBlockingBLPOPTimesOut(t *testing.T) {
	c := newTestContext()
	start := time.Now()
	got := run(t, c, "BLPOP", "empty", "1")
	assert.Equal(t, store.Nil(), got)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestSelectSwitchesDatabase(t *testing.T) {
	c := newTestContext()
	run(t, c, "SET", "k", "db0")
	run(t, c, "SELECT", "1")
	assert.Equal(t, store.Nil(), run(t, c, "GET", "k"))
	run(t, c, "SET", "k", "db1")
	run(t, c, "SELECT", "0")
	assert.Equal(t, store.StringRes([]byte("db0")), run(t, c, "GET", "k"))
}

func TestFlushAllClearsEveryDatabase(t *testing.T) {
	c := newTestContext()
	run(t, c, "SET", "k", "v")
	run(t, c, "SELECT", "1")
	run(t, c, "SET", "k1", "v")
	run(t, c, "SELECT", "0")
	run(t, c, "FLUSHALL")
	assert.Equal(t, store.IntRes(0), run(t, c, "EXISTS", "k"))
	run(t, c, "SELECT", "1")
	assert.Equal(t, store.IntRes(0), run(t, c, "EXISTS", "k1"))
}
