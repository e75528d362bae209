package dispatch

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/store"
	"github.com/shirou/gopsutil/v4/host"
)

// ServerVersion is reported by INFO. It holds a literal default, which
// a build can override with -ldflags "-X".
var ServerVersion = "0.1.0"

func registerMiscHandlers() {
	registerNamed("misc", []string{"PING"}, handlePing)
	registerNamed("misc", []string{"ECHO"}, handleEcho)
	registerNamed("misc", []string{"SELECT"}, handleSelect)
	registerNamed("misc", []string{"FLUSHDB"}, handleFlushDB)
	registerNamed("misc", []string{"FLUSHALL"}, handleFlushAll)
	registerNamed("misc", []string{"KEYS"}, handleKeys)
	registerNamed("misc", []string{"INFO"}, handleInfo)
	registerNamed("misc", []string{"PRINTCMDS"}, handlePrintCmds)
	registerNamed("misc", []string{"SCRIPT"}, handleScript)
	registerNamed("misc", []string{"EMBEDDEDSCRIPT"}, handleEmbeddedScript)
	registerNamed("misc", []string{"CGET"}, handleCGet)
	registerNamed("misc", []string{"CSET"}, handleCSet)
	registerNamed("misc", []string{"CDEL"}, handleCDel)
}

func handlePing(c *Context, cmd command.Command) store.ReturnValue {
	if len(cmd.Args) > 0 {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	return store.StringRes([]byte("PONG"))
}

func handleEcho(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	return store.StringRes(cmd.Args[0])
}

func handleSelect(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	idx, ok := command.ParseInt(cmd.Args[0])
	if !ok {
		return command.ErrNotAnInteger()
	}
	db, exists := c.Store.DB(int(idx))
	if !exists {
		return store.ErrorRes("ERR database index out of range")
	}
	c.DB = db
	c.DBIndex = int(idx)
	return store.Ok()
}

func handleFlushDB(c *Context, cmd command.Command) store.ReturnValue {
	if len(cmd.Args) > 0 {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	_ = c.Store.FlushDB(c.DBIndex)
	return store.Ok()
}

func handleFlushAll(c *Context, cmd command.Command) store.ReturnValue {
	if len(cmd.Args) > 0 {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	c.Store.FlushAll()
	return store.Ok()
}

func handleKeys(c *Context, cmd command.Command) store.ReturnValue {
	if len(cmd.Args) > 0 {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	seen := make(map[string]struct{})
	var out []store.Value
	add := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, []byte(k))
	}
	c.DB.WithKV(false, func(m map[store.Key]store.Value) {
		for k := range m {
			add(k)
		}
	})
	c.DB.WithSets(false, func(m map[store.Key]mapset.Set[string]) {
		for k := range m {
			add(k)
		}
	})
	c.DB.WithLists(false, func(m map[store.Key][]store.Value) []store.Value {
		for k := range m {
			add(k)
		}
		return nil
	})
	c.DB.WithHashes(false, func(m map[store.Key]map[store.Key]store.Value) {
		for k := range m {
			add(k)
		}
	})
	c.DB.WithZSets(false, func(m map[store.Key]*store.SortedSet) {
		for k := range m {
			add(k)
		}
	})
	c.DB.WithBlooms(false, func(m map[store.Key]*store.Bloom) {
		for k := range m {
			add(k)
		}
	})
	return store.MultiStringRes(out)
}

func handleInfo(c *Context, cmd command.Command) store.ReturnValue {
	if len(cmd.Args) > 0 {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	osName := runtime.GOOS
	if info, err := host.Info(); err == nil {
		osName = info.OS
	}
	report := fmt.Sprintf(
		"redis_version:%s\r\narch_bits:%d\r\nos:%s\r\n",
		ServerVersion, strconv.IntSize, osName,
	)
	return store.StringRes([]byte(report))
}

func handlePrintCmds(c *Context, cmd command.Command) store.ReturnValue {
	if len(cmd.Args) > 0 {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	families := CommandNames()
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []store.ReturnValue
	for _, family := range names {
		cmds := append([]string(nil), families[family]...)
		sort.Strings(cmds)
		var entries []store.Value
		entries = append(entries, []byte(strings.ToUpper(family)))
		for _, n := range cmds {
			entries = append(entries, []byte(n))
		}
		out = append(out, store.MultiStringRes(entries))
	}
	return store.ArrayRes(out)
}

func handleScript(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	if c.Scripts == nil {
		return store.ErrorRes("ERR scripting is disabled")
	}
	return c.Scripts.RunSource(c.Ctx, cmd.Args[0])
}

func handleEmbeddedScript(c *Context, cmd command.Command) store.ReturnValue {
	if !command.AtLeast(cmd.Args, 1) {
		return command.ErrNotEnoughArgs(cmd.Name)
	}
	if c.Scripts == nil {
		return store.ErrorRes("ERR scripting is disabled")
	}
	return c.Scripts.RunFunction(c.Ctx, string(cmd.Args[0]), cmd.Args[1:])
}

func handleCGet(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	v, ok := c.DB.Concurrent().Get(string(cmd.Args[0]))
	if !ok {
		return store.Nil()
	}
	return store.StringRes(v)
}

func handleCSet(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 2) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	c.DB.Concurrent().Set(string(cmd.Args[0]), cmd.Args[1])
	return store.Ok()
}

func handleCDel(c *Context, cmd command.Command) store.ReturnValue {
	if !command.Exact(cmd.Args, 1) {
		return command.ErrWrongNumberOfArgs(cmd.Name)
	}
	var n int64
	if c.DB.Concurrent().Delete(string(cmd.Args[0])) {
		n = 1
	}
	return store.IntRes(n)
}
