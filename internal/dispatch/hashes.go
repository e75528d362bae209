package dispatch

import (
	"strconv"

	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/store"
)

func registerHashHandlers() {
	registerNamed("hashes", []string{"HSET"}, handleHSet)
	registerNamed("hashes", []string{"HSETNX"}, handleHSetNX)
	registerNamed("hashes", []string{"HMSET"}, handleHMSet)
	registerNamed("hashes", []string{"HGET"}, handleHGet)
	registerNamed("hashes", []string{"HMGET"}, handleHMGet)
	registerNamed("hashes", []string{"HEXISTS"}, handleHExists)
	registerNamed("hashes", []string{"HGETALL"}, handleHGetAll)
	registerNamed("hashes", []string{"HKEYS"}, handleHKeys)
	registerNamed("hashes", []string{"HVALS"}, handleHVals)
	registerNamed("hashes", []string{"HLEN"}, handleHLen)
	registerNamed("hashes", []string{"HDEL"}, handleHDel)
	registerNamed("hashes", []string{"HSTRLEN"}, handleHStrLen)
	registerNamed("hashes", []string{"HINCRBY"}, handleHIncrBy)
}

func hashField(m map[store.Key]map[store.Key]store.Value, key store.Key, create bool) map[store.Key]store.Value {
	h, ok := m[key]
	if !ok && create {
		h = make(map[store.Key]store.Value)
		m[key] = h
	}
	return h
}

func handleHSet(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 3) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	c.DB.WithHashes(true, func(m map[store.Key]map[store.Key]store.Value) {
		h := hashField(m, string(cmd.Args[0]), true)
		h[string(cmd.Args[1])] = cmd.Args[2]
	})
	return store.Ok()
}

func handleHSetNX(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 3) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var set int64
	c.DB.WithHashes(true, func(m map[store.Key]map[store.Key]store.Value) {
		h := hashField(m, string(cmd.Args[0]), true)
		if _, exists := h[string(cmd.Args[1])]; exists {
			return
		}
		h[string(cmd.Args[1])] = cmd.Args[2]
		set = 1
	})
	return store.IntRes(set)
}

func handleHMSet(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 3) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	tail := cmd.Args[1:]
	if !command.Even(tail) {
		return command.ErrOddLength(cmd.Name)
	}
	c.DB.WithHashes(true, func(m map[store.Key]map[store.Key]store.Value) {
		h := hashField(m, string(cmd.Args[0]), true)
		for i := 0; i < len(tail); i += 2 {
			h[string(tail[i])] = tail[i+1]
		}
	})
	return store.Ok()
}

func handleHGet(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var out store.ReturnValue
	c.DB.WithHashes(false, func(m map[store.Key]map[store.Key]store.Value) {
		h := m[string(cmd.Args[0])]
		v, ok := h[string(cmd.Args[1])]
		if !ok {
			out = store.Nil()
			return
		}
		out = store.StringRes(v)
	})
	return out
}

func handleHMGet(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 2) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	fields := cmd.Args[1:]
	results := make([]store.ReturnValue, len(fields))
	c.DB.WithHashes(false, func(m map[store.Key]map[store.Key]store.Value) {
		h := m[string(cmd.Args[0])]
		for i, f := range fields {
			if v, ok := h[string(f)]; ok {
				results[i] = store.StringRes(v)
			} else {
				results[i] = store.Nil()
			}
		}
	})
	return store.ArrayRes(results)
}

func handleHExists(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var n int64
	c.DB.WithHashes(false, func(m map[store.Key]map[store.Key]store.Value) {
		if h, ok := m[string(cmd.Args[0])]; ok {
			if _, ok := h[string(cmd.Args[1])]; ok {
				n = 1
			}
		}
	})
	return store.IntRes(n)
}

func handleHGetAll(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var out []store.Value
	c.DB.WithHashes(false, func(m map[store.Key]map[store.Key]store.Value) {
		for f, v := range m[string(cmd.Args[0])] {
			out = append(out, []byte(f), v)
		}
	})
	return store.MultiStringRes(out)
}

func handleHKeys(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var out []store.Value
	c.DB.WithHashes(false, func(m map[store.Key]map[store.Key]store.Value) {
		for f := range m[string(cmd.Args[0])] {
			out = append(out, []byte(f))
		}
	})
	return store.MultiStringRes(out)
}

func handleHVals(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var out []store.Value
	c.DB.WithHashes(false, func(m map[store.Key]map[store.Key]store.Value) {
		for _, v := range m[string(cmd.Args[0])] {
			out = append(out, v)
		}
	})
	return store.MultiStringRes(out)
}

func handleHLen(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var n int64
	c.DB.WithHashes(false, func(m map[store.Key]map[store.Key]store.Value) {
		n = int64(len(m[string(cmd.Args[0])]))
	})
	return store.IntRes(n)
}

func handleHDel(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 2) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	var removed int64
	c.DB.WithHashes(true, func(m map[store.Key]map[store.Key]store.Value) {
		h, ok := m[string(cmd.Args[0])]
		if !ok {
			return
		}
		for _, f := range cmd.Args[1:] {
			if _, ok := h[string(f)]; ok {
				delete(h, string(f))
				removed++
			}
		}
		if len(h) == 0 {
			delete(m, string(cmd.Args[0]))
		}
	})
	return store.IntRes(removed)
}

func handleHStrLen(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var n int64
	c.DB.WithHashes(false, func(m map[store.Key]map[store.Key]store.Value) {
		if h, ok := m[string(cmd.Args[0])]; ok {
			n = int64(len(h[string(cmd.Args[1])]))
		}
	})
	return store.IntRes(n)
}

func handleHIncrBy(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 3) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	delta, ok := command.ParseInt(cmd.Args[2])
	if !ok {
		return command.ErrNotAnInteger()
	}
	var out store.ReturnValue
	c.DB.WithHashes(true, func(m map[store.Key]map[store.Key]store.Value) {
		h := hashField(m, string(cmd.Args[0]), true)
		field := string(cmd.Args[1])
		current := int64(0)
		if raw, ok := h[field]; ok {
			n, err := strconv.ParseInt(string(raw), 10, 64)
			if err != nil {
				out = store.ErrorRes("ERR hash value is not an integer")
				return
			}
			current = n
		}
		current += delta
		h[field] = []byte(strconv.FormatInt(current, 10))
		out = store.IntRes(current)
	})
	return out
}
