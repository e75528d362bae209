package dispatch

import (
	"math/rand"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/store"
)

func registerSetHandlers() {
	registerNamed("sets", []string{"SADD"}, handleSAdd)
	registerNamed("sets", []string{"SREM"}, handleSRem)
	registerNamed("sets", []string{"SMEMBERS"}, handleSMembers)
	registerNamed("sets", []string{"SCARD"}, handleSCard)
	registerNamed("sets", []string{"SISMEMBER"}, handleSIsMember)
	registerNamed("sets", []string{"SMOVE"}, handleSMove)
	registerNamed("sets", []string{"SPOP"}, handleSPop)
	registerNamed("sets", []string{"SRANDMEMBER"}, handleSRandMember)
	registerNamed("sets", []string{"SDIFF"}, handleSetFold("diff"))
	registerNamed("sets", []string{"SUNION"}, handleSetFold("union"))
	registerNamed("sets", []string{"SINTER"}, handleSetFold("inter"))
	registerNamed("sets", []string{"SDIFFSTORE"}, handleSetFoldStore("diff"))
	registerNamed("sets", []string{"SUNIONSTORE"}, handleSetFoldStore("union"))
	registerNamed("sets", []string{"SINTERSTORE"}, handleSetFoldStore("inter"))
}

func handleSAdd(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 2) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	var added int64
	c.DB.WithSets(true, func(m map[store.Key]mapset.Set[string]) {
		key := string(cmd.Args[0])
		s, ok := m[key]
		if !ok {
			s = mapset.NewThreadUnsafeSet[string]()
			m[key] = s
		}
		for _, member := range cmd.Args[1:] {
			if s.Add(string(member)) {
				added++
			}
		}
	})
	return store.IntRes(added)
}

func handleSRem(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 2) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	var removed int64
	c.DB.WithSets(true, func(m map[store.Key]mapset.Set[string]) {
		s, ok := m[string(cmd.Args[0])]
		if !ok {
			return
		}
		for _, member := range cmd.Args[1:] {
			if s.Contains(string(member)) {
				s.Remove(string(member))
				removed++
			}
		}
	})
	return store.IntRes(removed)
}

func handleSMembers(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var out []store.Value
	c.DB.WithSets(false, func(m map[store.Key]mapset.Set[string]) {
		s, ok := m[string(cmd.Args[0])]
		if !ok {
			return
		}
		for _, v := range s.ToSlice() {
			out = append(out, []byte(v))
		}
	})
	return store.MultiStringRes(out)
}

func handleSCard(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var n int64
	c.DB.WithSets(false, func(m map[store.Key]mapset.Set[string]) {
		if s, ok := m[string(cmd.Args[0])]; ok {
			n = int64(s.Cardinality())
		}
	})
	return store.IntRes(n)
}

func handleSIsMember(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var n int64
	c.DB.WithSets(false, func(m map[store.Key]mapset.Set[string]) {
		if s, ok := m[string(cmd.Args[0])]; ok && s.Contains(string(cmd.Args[1])) {
			n = 1
		}
	})
	return store.IntRes(n)
}

// handleSMove takes the sets slot's write lock once, which covers both
// src and dst, whether or not they name the same key.
func handleSMove(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 3) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	src, dst, member := string(cmd.Args[0]), string(cmd.Args[1]), string(cmd.Args[2])
	var moved int64
	c.DB.WithSets(true, func(m map[store.Key]mapset.Set[string]) {
		srcSet, ok := m[src]
		if !ok || !srcSet.Contains(member) {
			return
		}
		dstSet, ok := m[dst]
		if !ok {
			return
		}
		srcSet.Remove(member)
		dstSet.Add(member)
		moved = 1
	})
	return store.IntRes(moved)
}

func handleSPop(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 1) || len(cmd.Args) > 2 {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	if len(cmd.Args) == 1 {
		var out store.ReturnValue
		c.DB.WithSets(true, func(m map[store.Key]mapset.Set[string]) {
			s, ok := m[string(cmd.Args[0])]
			if !ok || s.Cardinality() == 0 {
				out = store.Nil()
				return
			}
			member, _ := s.Pop()
			out = store.StringRes([]byte(member))
		})
		return out
	}
	count, ok := command.ParseInt(cmd.Args[1])
	if !ok {
		return command.ErrNotAnInteger()
	}
	if count < 0 {
		return store.ErrorRes("ERR count must be non-negative")
	}
	var out []store.Value
	c.DB.WithSets(true, func(m map[store.Key]mapset.Set[string]) {
		s, ok := m[string(cmd.Args[0])]
		if !ok {
			return
		}
		for i := int64(0); i < count && s.Cardinality() > 0; i++ {
			member, _ := s.Pop()
			out = append(out, []byte(member))
		}
	})
	return store.MultiStringRes(out)
}

func handleSRandMember(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 1) || len(cmd.Args) > 2 {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	if len(cmd.Args) == 1 {
		var out store.ReturnValue
		c.DB.WithSets(false, func(m map[store.Key]mapset.Set[string]) {
			s, ok := m[string(cmd.Args[0])]
			if !ok || s.Cardinality() == 0 {
				out = store.Nil()
				return
			}
			slice := s.ToSlice()
			out = store.StringRes([]byte(slice[rand.Intn(len(slice))]))
		})
		return out
	}
	count, ok := command.ParseInt(cmd.Args[1])
	if !ok {
		return command.ErrNotAnInteger()
	}
	var out []store.Value
	c.DB.WithSets(false, func(m map[store.Key]mapset.Set[string]) {
		s, ok := m[string(cmd.Args[0])]
		if !ok || s.Cardinality() == 0 {
			return
		}
		slice := s.ToSlice()
		if count >= 0 {
			n := int(count)
			if n > len(slice) {
				n = len(slice)
			}
			rand.Shuffle(len(slice), func(i, j int) { slice[i], slice[j] = slice[j], slice[i] })
			for i := 0; i < n; i++ {
				out = append(out, []byte(slice[i]))
			}
		} else {
			n := int(-count)
			for i := 0; i < n; i++ {
				out = append(out, []byte(slice[rand.Intn(len(slice))]))
			}
		}
	})
	return store.MultiStringRes(out)
}

// fold computes the set operation named op over existing sets among
// keys, using the first existing set as the initial accumulator.
func fold(m map[store.Key]mapset.Set[string], keys [][]byte, op string) mapset.Set[string] {
	var acc mapset.Set[string]
	for _, k := range keys {
		s, ok := m[string(k)]
		if !ok {
			continue
		}
		if acc == nil {
			acc = s.Clone()
			continue
		}
		switch op {
		case "diff":
			acc = acc.Difference(s)
		case "union":
			acc = acc.Union(s)
		case "inter":
			acc = acc.Intersect(s)
		}
	}
	return acc
}

func handleSetFold(op string) Handler {
	return func(c *Context, cmd command.Command) store.ReturnValue {
		if !command.AtLeast(cmd.Args, 1) {
			return command.ErrNotEnoughArgs(cmd.Name)
		}
		var out []store.Value
		c.DB.WithSets(false, func(m map[store.Key]mapset.Set[string]) {
			acc := fold(m, cmd.Args, op)
			if acc == nil {
				return
			}
			for _, v := range acc.ToSlice() {
				out = append(out, []byte(v))
			}
		})
		return store.MultiStringRes(out)
	}
}

func handleSetFoldStore(op string) Handler {
	return func(c *Context, cmd command.Command) store.ReturnValue {
		if !command.AtLeast(cmd.Args, 2) {
			return command.ErrNotEnoughArgs(cmd.Name)
		}
		dst := string(cmd.Args[0])
		var card int64
		c.DB.WithSets(true, func(m map[store.Key]mapset.Set[string]) {
			acc := fold(m, cmd.Args[1:], op)
			if acc == nil {
				acc = mapset.NewThreadUnsafeSet[string]()
			}
			m[dst] = acc
			card = int64(acc.Cardinality())
		})
		return store.IntRes(card)
	}
}
