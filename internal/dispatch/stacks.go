package dispatch

import (
	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/store"
)

func registerStackHandlers() {
	registerNamed("stacks", []string{"STPUSH"}, handleSTPush)
	registerNamed("stacks", []string{"STPOP"}, handleSTPop)
	registerNamed("stacks", []string{"STPEEK"}, handleSTPeek)
	registerNamed("stacks", []string{"STSIZE"}, handleSTSize)
}

func handleSTPush(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var size int64
	c.DB.WithStacks(true, func(m map[store.Key]*store.Stack) {
		key := string(cmd.Args[0])
		s, ok := m[key]
		if !ok {
			s = store.NewStack()
			m[key] = s
		}
		size = s.Push(cmd.Args[1])
	})
	return store.IntRes(size)
}

func handleSTPop(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var out store.ReturnValue
	c.DB.WithStacks(true, func(m map[store.Key]*store.Stack) {
		s, ok := m[string(cmd.Args[0])]
		if !ok {
			out = store.Nil()
			return
		}
		v, ok := s.Pop()
		if !ok {
			out = store.Nil()
			return
		}
		out = store.StringRes(v)
	})
	return out
}

func handleSTPeek(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var out store.ReturnValue
	c.DB.WithStacks(false, func(m map[store.Key]*store.Stack) {
		s, ok := m[string(cmd.Args[0])]
		if !ok {
			out = store.Nil()
			return
		}
		v, ok := s.Peek()
		if !ok {
			out = store.Nil()
			return
		}
		out = store.StringRes(v)
	})
	return out
}

func handleSTSize(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var out store.ReturnValue
	c.DB.WithStacks(false, func(m map[store.Key]*store.Stack) {
		s, ok := m[string(cmd.Args[0])]
		if !ok {
			out = store.Nil()
			return
		}
		out = store.IntRes(s.Size())
	})
	return out
}
