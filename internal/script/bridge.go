/*
Package script embeds a Lua engine behind two bounded channels: one
carrying programs from the dispatcher to the engine, one carrying
re-entrant command calls from the engine back to the dispatcher. The
engine runs on its own goroutine and blocks on its inbound channel
between scripts.
*/
package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/store"
	lua "github.com/yuin/gopher-lua"
)

const bridgeCapacity = 12

// Program is either a source string or a named function call with
// RESP-shaped arguments.
type Program struct {
	Source   string
	FuncName string
	Args     [][]byte
}

type job struct {
	prog  Program
	reply chan store.ReturnValue
}

type reentrantCall struct {
	cmd   command.Command
	reply chan store.ReturnValue
}

// Executor runs a re-entrant command issued by a script against
// server state.
type Executor func(command.Command) store.ReturnValue

// Bridge connects the dispatcher to a Lua engine goroutine.
type Bridge struct {
	toEngine   chan job
	fromEngine chan reentrantCall
	exec       Executor
}

// NewBridge starts the engine goroutine and returns the bridge used to
// submit scripts. exec is called for every redis_call from Lua.
func NewBridge(exec Executor) *Bridge {
	b := &Bridge{
		toEngine:   make(chan job, bridgeCapacity),
		fromEngine: make(chan reentrantCall, bridgeCapacity),
		exec:       exec,
	}
	go b.run()
	return b
}

func (b *Bridge) run() {
	for j := range b.toEngine {
		j.reply <- b.eval(j.prog)
	}
}

func (b *Bridge) eval(prog Program) store.ReturnValue {
	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("redis_call", L.NewFunction(b.luaCall))

	var source string
	switch {
	case prog.Source != "":
		source = prog.Source
	case prog.FuncName != "":
		source = callExpression(prog.FuncName, prog.Args)
	default:
		return store.ErrorRes("ERR empty script")
	}

	if err := L.DoString(source); err != nil {
		return store.ErrorRes(fmt.Sprintf("ERR script error: %v", err))
	}
	if L.GetTop() == 0 {
		return store.Ok()
	}
	return luaValueToReturnValue(L.Get(-1))
}

func callExpression(fn string, args [][]byte) string {
	s := fn + "("
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%q", string(a))
	}
	return s + ")"
}

// luaCall implements redis_call(name, arg...) for scripts: it forwards
// a command back through fromEngine to the dispatcher and blocks for
// the reply.
func (b *Bridge) luaCall(L *lua.LState) int {
	n := L.GetTop()
	if n == 0 {
		L.Push(lua.LString("ERR redis_call requires a command name"))
		return 1
	}
	name := strings.ToUpper(L.ToString(1))
	args := make([][]byte, 0, n-1)
	for i := 2; i <= n; i++ {
		args = append(args, []byte(L.ToString(i)))
	}
	reply := make(chan store.ReturnValue, 1)
	b.fromEngine <- reentrantCall{cmd: command.Command{Name: name, Args: args}, reply: reply}
	result := <-reply
	pushReturnValue(L, result)
	return 1
}

// RunSource submits a raw script and blocks until it completes,
// servicing any re-entrant calls the script issues along the way.
func (b *Bridge) RunSource(ctx context.Context, source []byte) store.ReturnValue {
	return b.submit(ctx, Program{Source: string(source)})
}

// RunFunction submits a named-function call.
func (b *Bridge) RunFunction(ctx context.Context, name string, args [][]byte) store.ReturnValue {
	return b.submit(ctx, Program{FuncName: name, Args: args})
}

func (b *Bridge) submit(ctx context.Context, prog Program) store.ReturnValue {
	replyCh := make(chan store.ReturnValue, 1)
	select {
	case b.toEngine <- job{prog: prog, reply: replyCh}:
	case <-ctx.Done():
		return store.Nil()
	}

	for {
		select {
		case v := <-replyCh:
			return v
		case re := <-b.fromEngine:
			re.reply <- b.exec(re.cmd)
		case <-ctx.Done():
			return store.Nil()
		}
	}
}

// pushReturnValue pushes a command's ReturnValue onto the Lua stack as
// the result scripts see from redis_call: a string, an integer, nil,
// a table of strings for multi-results, or a raised error for
// ReturnValue::Error.
func pushReturnValue(L *lua.LState, rv store.ReturnValue) {
	if rv.IsError() {
		L.RaiseError("%s", rv.ErrorMessage())
		return
	}
	L.Push(returnValueToLua(L, rv))
}

func returnValueToLua(L *lua.LState, rv store.ReturnValue) lua.LValue {
	switch v := rv.AsAny().(type) {
	case nil:
		return lua.LNil
	case int64:
		return lua.LNumber(v)
	case []byte:
		return lua.LString(string(v))
	case [][]byte:
		tbl := L.NewTable()
		for _, item := range v {
			tbl.Append(lua.LString(string(item)))
		}
		return tbl
	default:
		return lua.LNil
	}
}

// luaValueToReturnValue converts a script's final stack value back
// into a ReturnValue for the RESP reply sent to the connection.
func luaValueToReturnValue(v lua.LValue) store.ReturnValue {
	switch t := v.(type) {
	case *lua.LNilType:
		return store.Nil()
	case lua.LBool:
		if bool(t) {
			return store.IntRes(1)
		}
		return store.IntRes(0)
	case lua.LNumber:
		return store.IntRes(int64(t))
	case lua.LString:
		return store.StringRes([]byte(string(t)))
	case *lua.LTable:
		var items []store.Value
		t.ForEach(func(_, val lua.LValue) {
			items = append(items, []byte(val.String()))
		})
		return store.MultiStringRes(items)
	default:
		return store.StringRes([]byte(v.String()))
	}
}
