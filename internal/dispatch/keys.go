package dispatch

import (
	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/store"
)

func registerKeyHandlers() {
	registerNamed("keys", []string{"GET"}, handleGet)
	registerNamed("keys", []string{"SET"}, handleSet)
	registerNamed("keys", []string{"MSET"}, handleMSet)
	registerNamed("keys", []string{"MGET"}, handleMGet)
	registerNamed("keys", []string{"DEL"}, handleDel)
	registerNamed("keys", []string{"RENAME"}, handleRename)
	registerNamed("keys", []string{"RENAMENX"}, handleRenameNX)
	registerNamed("keys", []string{"EXISTS"}, handleExists)
}

func handleGet(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var out store.ReturnValue
	c.DB.WithKV(false, func(m map[store.Key]store.Value) {
		v, ok := m[string(cmd.Args[0])]
		if !ok {
			out = store.Nil()
			return
		}
		out = store.StringRes(v)
	})
	return out
}

func handleSet(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	c.DB.WithKV(true, func(m map[store.Key]store.Value) {
		m[string(cmd.Args[0])] = cmd.Args[1]
	})
	return store.Ok()
}

func handleMSet(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 2) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	if !command.Even(cmd.Args) {
		return command.ErrOddLength(cmd.Name)
	}
	c.DB.WithKV(true, func(m map[store.Key]store.Value) {
		for i := 0; i < len(cmd.Args); i += 2 {
			m[string(cmd.Args[i])] = cmd.Args[i+1]
		}
	})
	return store.Ok()
}

func handleMGet(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 1) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	out := make([]store.Value, len(cmd.Args))
	c.DB.WithKV(false, func(m map[store.Key]store.Value) {
		for i, k := range cmd.Args {
			if v, ok := m[string(k)]; ok {
				out[i] = v
			} else {
				out[i] = nil
			}
		}
	})
	return store.MultiStringRes(out)
}

func handleDel(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 1) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	var removed int64
	c.DB.WithKV(true, func(m map[store.Key]store.Value) {
		for _, k := range cmd.Args {
			if _, ok := m[string(k)]; ok {
				delete(m, string(k))
				removed++
			}
		}
	})
	return store.IntRes(removed)
}

func handleRename(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var errRes *store.ReturnValue
	c.DB.WithKV(true, func(m map[store.Key]store.Value) {
		v, ok := m[string(cmd.Args[0])]
		if !ok {
			e := store.ErrorRes("ERR no such key")
			errRes = &e
			return
		}
		m[string(cmd.Args[1])] = v
		delete(m, string(cmd.Args[0]))
	})
	if errRes != nil {
		return *errRes
	}
	return store.Ok()
}

func handleRenameNX(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var renamed int64
	c.DB.WithKV(true, func(m map[store.Key]store.Value) {
		v, ok := m[string(cmd.Args[0])]
		if !ok {
			return
		}
		if _, exists := m[string(cmd.Args[1])]; exists {
			return
		}
		m[string(cmd.Args[1])] = v
		delete(m, string(cmd.Args[0]))
		renamed = 1
	})
	return store.IntRes(renamed)
}

func handleExists(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 1) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	var count int64
	c.DB.WithKV(false, func(m map[store.Key]store.Value) {
		for _, k := range cmd.Args {
			if _, ok := m[string(k)]; ok {
				count++
			}
		}
	})
	return store.IntRes(count)
}
