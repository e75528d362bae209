package script

import (
	"context"
	"testing"
	"time"

	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestRunSourceReturnsLiteral(t *testing.T) {
	b := NewBridge(func(command.Command) store.ReturnValue { return store.Nil() })
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got := b.RunSource(ctx, []byte(`return "hello"`))
	assert.Equal(t, store.StringRes([]byte("hello")), got)
}

func TestRunSourceReentrantCall(t *testing.T) {
	var seen command.Command
	b := NewBridge(func(cmd command.Command) store.ReturnValue {
		seen = cmd
		return store.StringRes([]byte("world"))
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got := b.RunSource(ctx, []byte(`return redis_call("GET", "hello")`))
	assert.Equal(t, store.StringRes([]byte("world")), got)
	assert.Equal(t, "GET", seen.Name)
}
