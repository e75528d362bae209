/*
Package dispatch routes a parsed command.Command to its family
handler and returns a store.ReturnValue. Handlers are pure functions
over a Context and never touch the wire protocol directly.
*/
package dispatch

import (
	"context"

	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/store"
)

// Scripter forwards SCRIPT/EMBEDDEDSCRIPT requests to the scripting
// bridge. A nil Scripter means scripting is disabled.
type Scripter interface {
	RunSource(ctx context.Context, source []byte) store.ReturnValue
	RunFunction(ctx context.Context, name string, args [][]byte) store.ReturnValue
}

// Context is everything a handler needs beyond the command itself.
// DB/DBIndex are owned by the connection and may be rewritten in
// place by SELECT; nothing else reaches into them concurrently since
// a connection's Context is only ever touched by its own goroutine.
type Context struct {
	Ctx     context.Context
	DB      *store.State
	DBIndex int
	Store   *store.StateStore
	Scripts Scripter
}

// Handler implements one command.
type Handler func(*Context, command.Command) store.ReturnValue

// table maps upper-cased command names to their handler. Built once
// at init from the per-family registration functions.
var table = make(map[string]Handler)

func register(names []string, h Handler) {
	for _, n := range names {
		table[n] = h
	}
}

func init() {
	registerKeyHandlers()
	registerSetHandlers()
	registerListHandlers()
	registerHashHandlers()
	registerZSetHandlers()
	registerBloomHandlers()
	registerStackHandlers()
	registerHLLHandlers()
	registerMiscHandlers()
}

// Dispatch looks up cmd.Name and runs its handler, or returns the
// unknown-command error if no handler is registered.
func Dispatch(ctx *Context, cmd command.Command) store.ReturnValue {
	h, ok := table[cmd.Name]
	if !ok {
		return command.ErrUnknown(cmd.Name)
	}
	return h(ctx, cmd)
}

// CommandNames returns every registered command name, grouped by the
// family that registered it, in registration order. Used by
// PRINTCMDS.
func CommandNames() map[string][]string {
	return familyNames
}

var familyNames = make(map[string][]string)

func registerNamed(family string, names []string, h Handler) {
	familyNames[family] = append(familyNames[family], names...)
	register(names, h)
}
