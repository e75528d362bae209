package dispatch

import (
	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/store"
)

func registerBloomHandlers() {
	registerNamed("blooms", []string{"BINSERT"}, handleBInsert)
	registerNamed("blooms", []string{"BCONTAINS"}, handleBContains)
}

func handleBInsert(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	c.DB.WithBlooms(true, func(m map[store.Key]*store.Bloom) {
		key := string(cmd.Args[0])
		b, ok := m[key]
		if !ok {
			b = store.NewBloom()
			m[key] = b
		}
		b.Insert(cmd.Args[1])
	})
	return store.Ok()
}

func handleBContains(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var n int64
	c.DB.WithBlooms(false, func(m map[store.Key]*store.Bloom) {
		if b, ok := m[string(cmd.Args[0])]; ok && b.Contains(cmd.Args[1]) {
			n = 1
		}
	})
	return store.IntRes(n)
}
