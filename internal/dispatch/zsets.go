package dispatch

import (
	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/store"
)

func registerZSetHandlers() {
	registerNamed("zsets", []string{"ZADD"}, handleZAdd)
	registerNamed("zsets", []string{"ZREM"}, handleZRem)
	registerNamed("zsets", []string{"ZRANGE"}, handleZRange)
	registerNamed("zsets", []string{"ZCARD"}, handleZCard)
	registerNamed("zsets", []string{"ZSCORE"}, handleZScore)
	registerNamed("zsets", []string{"ZPOPMAX"}, zPopHandler(true))
	registerNamed("zsets", []string{"ZPOPMIN"}, zPopHandler(false))
	registerNamed("zsets", []string{"ZRANK"}, handleZRank)
}

func zsetFor(m map[store.Key]*store.SortedSet, key store.Key, create bool) *store.SortedSet {
	zs, ok := m[key]
	if !ok && create {
		zs = store.NewSortedSet()
		m[key] = zs
	}
	return zs
}

func handleZAdd(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 3) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	tail := cmd.Args[1:]
	if !command.Even(tail) {
		return command.ErrOddLength(cmd.Name)
	}
	pairs := make([]struct {
		Score  store.Score
		Member store.Key
	}, 0, len(tail)/2)
	for i := 0; i < len(tail); i += 2 {
		score, ok := command.ParseInt(tail[i])
		if !ok {
			return command.ErrNotAnInteger()
		}
		pairs = append(pairs, struct {
			Score  store.Score
			Member store.Key
		}{Score: score, Member: string(tail[i+1])})
	}
	var added int64
	c.DB.WithZSets(true, func(m map[store.Key]*store.SortedSet) {
		zs := zsetFor(m, string(cmd.Args[0]), true)
		added = zs.Add(pairs)
	})
	return store.IntRes(added)
}

func handleZRem(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 2) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	var removed int64
	c.DB.WithZSets(true, func(m map[store.Key]*store.SortedSet) {
		zs, ok := m[string(cmd.Args[0])]
		if !ok {
			return
		}
		members := make([]store.Key, len(cmd.Args)-1)
		for i, a := range cmd.Args[1:] {
			members[i] = string(a)
		}
		removed = zs.Remove(members)
		if zs.Card() == 0 {
			delete(m, string(cmd.Args[0]))
		}
	})
	return store.IntRes(removed)
}

func handleZRange(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 3) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	start, ok1 := command.ParseInt(cmd.Args[1])
	stop, ok2 := command.ParseInt(cmd.Args[2])
	if !ok1 || !ok2 {
		return command.ErrNotAnInteger()
	}
	var out []store.Value
	c.DB.WithZSets(false, func(m map[store.Key]*store.SortedSet) {
		zs, ok := m[string(cmd.Args[0])]
		if !ok {
			return
		}
		card := zs.Card()
		if card == 0 {
			return
		}
		s := clamp(normalizeIndex(start, int(card)), 0, card-1)
		e := clamp(normalizeIndex(stop, int(card)), 0, card-1)
		for _, member := range zs.RangeByRank(s, e) {
			out = append(out, []byte(member))
		}
	})
	return store.MultiStringRes(out)
}

func handleZCard(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var n int64
	c.DB.WithZSets(false, func(m map[store.Key]*store.SortedSet) {
		if zs, ok := m[string(cmd.Args[0])]; ok {
			n = zs.Card()
		}
	})
	return store.IntRes(n)
}

func handleZScore(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var out store.ReturnValue
	c.DB.WithZSets(false, func(m map[store.Key]*store.SortedSet) {
		zs, ok := m[string(cmd.Args[0])]
		if !ok {
			out = store.Nil()
			return
		}
		score, ok := zs.Score(string(cmd.Args[1]))
		if !ok {
			out = store.Nil()
			return
		}
		out = store.IntRes(score)
	})
	return out
}

func zPopHandler(fromMax bool) Handler {
	return func(c *Context, cmd command.Command) store.ReturnValue {
		if !command.Exact(cmd.Args, 2) {
			return command.ErrWrongNumberOfArgs(cmd.Name)
		}
		count, ok := command.ParseInt(cmd.Args[1])
		if !ok {
			return command.ErrNotAnInteger()
		}
		var results []store.ReturnValue
		c.DB.WithZSets(true, func(m map[store.Key]*store.SortedSet) {
			zs, ok := m[string(cmd.Args[0])]
			if !ok || count <= 0 {
				return
			}
			var popped []struct {
				Score  store.Score
				Member store.Key
			}
			if fromMax {
				popped = zs.PopMax(int(count))
			} else {
				popped = zs.PopMin(int(count))
			}
			for _, p := range popped {
				results = append(results, store.IntRes(p.Score), store.StringRes([]byte(p.Member)))
			}
			if zs.Card() == 0 {
				delete(m, string(cmd.Args[0]))
			}
		})
		return store.ArrayRes(results)
	}
}

func handleZRank(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var out store.ReturnValue
	c.DB.WithZSets(false, func(m map[store.Key]*store.SortedSet) {
		zs, ok := m[string(cmd.Args[0])]
		if !ok {
			out = store.Nil()
			return
		}
		rank, ok := zs.Rank(string(cmd.Args[1]))
		if !ok {
			out = store.Nil()
			return
		}
		out = store.IntRes(rank)
	})
	return out
}
