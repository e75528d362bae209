/*
Package command turns a decoded RESP array into a typed Command and
validates its shape (arity, argument typing) before dispatch ever
sees it.
*/
package command

import (
	"fmt"
	"strings"

	"github.com/kvforge/respkv/internal/proto"
)

// Command is a parsed request: an upper-cased name and its raw
// argument bytes. Per-command arity and type checking happens in the
// dispatch package, which knows each command's exact shape; this
// package only extracts the name/argument list and the shared
// validation helpers both layers use.
type Command struct {
	Name string
	Args [][]byte
}

// ParseError is returned by Parse for a request that is not a
// non-empty array of non-nil strings. Unknown commands, wrong arity,
// ill-typed arguments and odd-length tails are not ParseErrors: the
// dispatch handlers report them as error ReturnValues built by the
// helpers in helpers.go. The server treats a ParseError like a framing
// error and closes the connection.
type ParseError struct {
	msg string
}

func (e *ParseError) Error() string { return e.msg }

func newParseError(format string, args ...any) error {
	return &ParseError{msg: fmt.Sprintf(format, args...)}
}

// Parse extracts a Command from a decoded RESP value, which must be
// an Array of bulk/simple strings whose first element is the command
// name.
func Parse(v proto.Value) (Command, error) {
	if v.Type != proto.TypeArray || v.NullArray {
		return Command{}, newParseError("ERR expected array request")
	}
	if len(v.Array) == 0 {
		return Command{}, newParseError("ERR empty request")
	}
	first := v.Array[0]
	if first.NullBulk {
		return Command{}, newParseError("ERR command name cannot be nil")
	}
	name := strings.ToUpper(string(first.Str))

	args := make([][]byte, 0, len(v.Array)-1)
	for _, elem := range v.Array[1:] {
		if elem.NullBulk {
			return Command{}, newParseError("ERR unexpected nil argument")
		}
		args = append(args, elem.Str)
	}
	return Command{Name: name, Args: args}, nil
}
