package command

import (
	"strconv"

	"github.com/kvforge/respkv/internal/store"
)

// ErrUnknown builds the ReturnValue for a command name with no
// registered handler.
func ErrUnknown(name string) store.ReturnValue {
	return store.ErrorRes("ERR unknown command '" + name + "'")
}

// ErrNotEnoughArgs reports a variadic command called with fewer
// arguments than its minimum, distinct from ErrWrongNumberOfArgs which
// is for fixed-arity commands.
func ErrNotEnoughArgs(name string) store.ReturnValue {
	return store.ErrorRes("ERR not enough arguments for '" + name + "'")
}

// ErrWrongNumberOfArgs reports a fixed-arity command called with the
// wrong exact count.
func ErrWrongNumberOfArgs(name string) store.ReturnValue {
	return store.ErrorRes("ERR wrong number of arguments for '" + name + "'")
}

// ErrNotAnInteger reports an argument that was expected to parse as a
// signed integer (a score, count, or index) and did not.
func ErrNotAnInteger() store.ReturnValue {
	return store.ErrorRes("ERR value is not an integer or out of range")
}

// ErrOddLength reports a tail of arguments that was expected to come
// in (key, value) pairs but had an odd count.
func ErrOddLength(name string) store.ReturnValue {
	return store.ErrorRes("ERR wrong number of arguments for '" + name + "', expected pairs")
}

// Exact reports whether args has exactly n elements.
func Exact(args [][]byte, n int) bool { return len(args) == n }

// AtLeast reports whether args has at least n elements.
func AtLeast(args [][]byte, n int) bool { return len(args) >= n }

// Even reports whether args has an even length, as required for
// (field, value) pair tails.
func Even(args [][]byte) bool { return len(args)%2 == 0 }

// ParseInt decodes b as an ASCII signed decimal integer.
func ParseInt(b []byte) (int64, bool) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	return n, err == nil
}
