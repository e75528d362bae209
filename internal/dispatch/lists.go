package dispatch

import (
	"time"

	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/store"
)

// neverTimeout stands in for BLPOP/BRPOP's timeout 0 ("never"):
// implementations represent it as a very large deadline rather than
// truly unbounded, so a leaked connection can't pin a goroutine
// forever.
const neverTimeout = 24 * time.Hour

func registerListHandlers() {
	registerNamed("lists", []string{"LPUSH"}, pushHandler(true, false))
	registerNamed("lists", []string{"RPUSH"}, pushHandler(false, false))
	registerNamed("lists", []string{"LPUSHX"}, pushHandler(true, true))
	registerNamed("lists", []string{"RPUSHX"}, pushHandler(false, true))
	registerNamed("lists", []string{"LPOP"}, popHandler(true))
	registerNamed("lists", []string{"RPOP"}, popHandler(false))
	registerNamed("lists", []string{"LLEN"}, handleLLen)
	registerNamed("lists", []string{"LINDEX"}, handleLIndex)
	registerNamed("lists", []string{"LSET"}, handleLSet)
	registerNamed("lists", []string{"LRANGE"}, handleLRange)
	registerNamed("lists", []string{"LTRIM"}, handleLTrim)
	registerNamed("lists", []string{"RPOPLPUSH"}, handleRPopLPush)
	registerNamed("lists", []string{"BLPOP"}, blockingPopHandler(true))
	registerNamed("lists", []string{"BRPOP"}, blockingPopHandler(false))
}

func pushHandler(front, onlyIfExists bool) Handler {
	return func(c *Context, cmd command.Command) store.ReturnValue {
		if !command.AtLeast(cmd.Args, 2) {
			return command.ErrNotEnoughArgs(cmd.Name)
		}
		key := string(cmd.Args[0])
		var length int64
		c.DB.WithLists(true, func(m map[store.Key][]store.Value) []store.Value {
			list, exists := m[key]
			if onlyIfExists && !exists {
				return nil
			}
			for _, v := range cmd.Args[1:] {
				if front {
					list = append([]store.Value{v}, list...)
				} else {
					list = append(list, v)
				}
			}
			m[key] = list
			length = int64(len(list))
			return nil
		})
		if length > 0 {
			c.DB.Receipts.Notify(key)
		}
		return store.IntRes(length)
	}
}

func popHandler(front bool) Handler {
	return func(c *Context, cmd command.Command) store.ReturnValue {
		if !command.Exact(cmd.Args, 1) {
			return command.ErrWrongNumberOfArgs(cmd.Name)
		}
		key := string(cmd.Args[0])
		var out store.ReturnValue
		c.DB.WithLists(true, func(m map[store.Key][]store.Value) []store.Value {
			list, ok := m[key]
			if !ok || len(list) == 0 {
				out = store.Nil()
				return nil
			}
			var v store.Value
			if front {
				v, list = list[0], list[1:]
			} else {
				v, list = list[len(list)-1], list[:len(list)-1]
			}
			if len(list) == 0 {
				delete(m, key)
			} else {
				m[key] = list
			}
			out = store.StringRes(v)
			return nil
		})
		return out
	}
}

func handleLLen(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var n int64
	c.DB.WithLists(false, func(m map[store.Key][]store.Value) []store.Value {
		n = int64(len(m[string(cmd.Args[0])]))
		return nil
	})
	return store.IntRes(n)
}

func handleLIndex(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	idx, ok := command.ParseInt(cmd.Args[1])
	if !ok {
		return command.ErrNotAnInteger()
	}
	var out store.ReturnValue
	c.DB.WithLists(false, func(m map[store.Key][]store.Value) []store.Value {
		list := m[string(cmd.Args[0])]
		norm := normalizeIndex(idx, len(list))
		if norm < 0 || norm >= int64(len(list)) {
			out = store.ErrorRes("ERR Bad Range!")
			return nil
		}
		out = store.StringRes(list[norm])
		return nil
	})
	return out
}

func handleLSet(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 3) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	idx, ok := command.ParseInt(cmd.Args[1])
	if !ok {
		return command.ErrNotAnInteger()
	}
	var out store.ReturnValue
	c.DB.WithLists(true, func(m map[store.Key][]store.Value) []store.Value {
		list := m[string(cmd.Args[0])]
		norm := normalizeIndex(idx, len(list))
		if norm < 0 || norm >= int64(len(list)) {
			out = store.ErrorRes("ERR Bad Range!")
			return nil
		}
		list[norm] = cmd.Args[2]
		out = store.Ok()
		return nil
	})
	return out
}

func handleLRange(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 3) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	start, ok1 := command.ParseInt(cmd.Args[1])
	stop, ok2 := command.ParseInt(cmd.Args[2])
	if !ok1 || !ok2 {
		return command.ErrNotAnInteger()
	}
	var out []store.Value
	c.DB.WithLists(false, func(m map[store.Key][]store.Value) []store.Value {
		list := m[string(cmd.Args[0])]
		l := int64(len(list))
		if l == 0 {
			return nil
		}
		s := clamp(normalizeIndex(start, int(l)), 0, l-1)
		e := clamp(normalizeIndex(stop, int(l)), 0, l-1)
		for i := s; i <= e; i++ {
			out = append(out, list[i])
		}
		return nil
	})
	return store.MultiStringRes(out)
}

func handleLTrim(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 3) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	start, ok1 := command.ParseInt(cmd.Args[1])
	stop, ok2 := command.ParseInt(cmd.Args[2])
	if !ok1 || !ok2 {
		return command.ErrNotAnInteger()
	}
	c.DB.WithLists(true, func(m map[store.Key][]store.Value) []store.Value {
		key := string(cmd.Args[0])
		list := m[key]
		l := int64(len(list))
		if l == 0 {
			return nil
		}
		s := clamp(normalizeIndex(start, int(l)), 0, l)
		e := clamp(normalizeIndex(stop, int(l)), -1, l-1)
		if s > e {
			delete(m, key)
			return nil
		}
		m[key] = append([]store.Value{}, list[s:e+1]...)
		return nil
	})
	return store.Ok()
}

// handleRPopLPush takes the lists slot's write lock once, which covers
// both src and dst, so the pop and push (including the src == dst
// rotation) happen under one critical section.
func handleRPopLPush(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	src, dst := string(cmd.Args[0]), string(cmd.Args[1])
	var out store.ReturnValue
	c.DB.WithLists(true, func(m map[store.Key][]store.Value) []store.Value {
		list, ok := m[src]
		if !ok || len(list) == 0 {
			out = store.Nil()
			return nil
		}
		v := list[len(list)-1]
		list = list[:len(list)-1]
		if len(list) == 0 {
			delete(m, src)
		} else {
			m[src] = list
		}
		m[dst] = append([]store.Value{v}, m[dst]...)
		out = store.StringRes(v)
		return nil
	})
	if !out.IsError() && dst != src {
		c.DB.Receipts.Notify(dst)
	}
	return out
}

func blockingPopHandler(front bool) Handler {
	return func(c *Context, cmd command.Command) store.ReturnValue {
		if !command.Exact(cmd.Args, 2) {
			return command.ErrWrongNumberOfArgs(cmd.Name)
		}
		key := string(cmd.Args[0])
		timeoutSecs, ok := command.ParseInt(cmd.Args[1])
		if !ok || timeoutSecs < 0 {
			return command.ErrNotAnInteger()
		}
		deadline := neverTimeout
		if timeoutSecs > 0 {
			deadline = time.Duration(timeoutSecs) * time.Second
		}

		tryPop := func() (store.Value, bool) {
			var v store.Value
			var found bool
			c.DB.WithLists(true, func(m map[store.Key][]store.Value) []store.Value {
				list, ok := m[key]
				if !ok || len(list) == 0 {
					return nil
				}
				if front {
					v, list = list[0], list[1:]
				} else {
					v, list = list[len(list)-1], list[:len(list)-1]
				}
				if len(list) == 0 {
					delete(m, key)
				} else {
					m[key] = list
				}
				found = true
				return nil
			})
			return v, found
		}

		if v, ok := tryPop(); ok {
			return store.StringRes(v)
		}

		waiter := c.DB.Receipts.Register([]store.Key{key})
		defer func() { c.DB.Receipts.Cancel([]store.Key{key}, waiter) }()

		timer := time.NewTimer(deadline)
		defer timer.Stop()

		for {
			select {
			case <-c.Ctx.Done():
				return store.Nil()
			case <-timer.C:
				return store.Nil()
			case <-waiter.Done():
				if v, ok := tryPop(); ok {
					return store.StringRes(v)
				}
				// Lost the race to another waiter; re-register and
				// keep waiting out the remaining deadline.
				c.DB.Receipts.Cancel([]store.Key{key}, waiter)
				waiter = c.DB.Receipts.Register([]store.Key{key})
			}
		}
	}
}
