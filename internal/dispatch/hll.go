package dispatch

import (
	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/store"
)

func registerHLLHandlers() {
	registerNamed("hyperloglog", []string{"PFADD"}, handlePFAdd)
	registerNamed("hyperloglog", []string{"PFCOUNT"}, handlePFCount)
	registerNamed("hyperloglog", []string{"PFMERGE"}, handlePFMerge)
}

func handlePFAdd(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 2) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	var changed int64
	c.DB.WithHLLs(true, func(m map[store.Key]*store.HyperLogLog) {
		key := string(cmd.Args[0])
		h, ok := m[key]
		if !ok {
			h = store.NewHyperLogLog()
			m[key] = h
		}
		for _, v := range cmd.Args[1:] {
			if h.Add(v) {
				changed = 1
			}
		}
	})
	return store.IntRes(changed)
}

func handlePFCount(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 1) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	var n int64
	c.DB.WithHLLs(false, func(m map[store.Key]*store.HyperLogLog) {
		if len(cmd.Args) == 1 {
			if h, ok := m[string(cmd.Args[0])]; ok {
				n = h.Count()
			}
			return
		}
		var merged *store.HyperLogLog
		for _, k := range cmd.Args {
			h, ok := m[string(k)]
			if !ok {
				continue
			}
			if merged == nil {
				merged = h.Clone()
				continue
			}
			merged.Merge(h)
		}
		if merged != nil {
			n = merged.Count()
		}
	})
	return store.IntRes(n)
}

// handlePFMerge acquires every source before the destination; sources
// are read in the order given, then the destination is created or
// updated once.
func handlePFMerge(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 1) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	dst := string(cmd.Args[0])
	sources := cmd.Args[1:]
	c.DB.WithHLLs(true, func(m map[store.Key]*store.HyperLogLog) {
		target, ok := m[dst]
		if !ok {
			target = store.NewHyperLogLog()
			m[dst] = target
		}
		for _, k := range sources {
			if src, ok := m[string(k)]; ok && src != target {
				target.Merge(src)
			}
		}
	})
	return store.Ok()
}
