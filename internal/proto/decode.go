package proto

import (
	"bytes"
	"errors"
	"strconv"
)

// ErrIncomplete signals that buf does not yet contain a full frame.
// Callers should leave the buffer untouched, read more bytes, and
// retry — Decode never consumes a partial frame.
var ErrIncomplete = errors.New("proto: incomplete frame")

// ErrFraming signals a fatal, unrecoverable protocol violation: an
// unrecognized leading byte (with inline commands disabled), a length
// that isn't a valid signed integer, or a negative bulk length other
// than -1. The connection must be closed on this error.
var ErrFraming = errors.New("proto: framing error")

// Decoder turns a byte buffer into RESP Values. It holds no state
// between calls — buffering partial reads is the caller's job (see
// internal/server) — only the AllowInline toggle.
type Decoder struct {
	// AllowInline enables parsing of lines that don't start with one of
	// +-$:* as a shell-tokenized array of simple strings. When false,
	// such a line is a fatal framing error.
	AllowInline bool
}

// NewDecoder returns a Decoder with inline commands enabled.
func NewDecoder() *Decoder {
	return &Decoder{AllowInline: true}
}

// Decode attempts to parse one RESP value from the front of buf. On
// success it returns the number of bytes consumed and the value. If
// buf holds an incomplete frame it returns (0, Value{}, ErrIncomplete)
// without having inspected more than it needed to discover that. A
// malformed frame returns ErrFraming.
func (d *Decoder) Decode(buf []byte) (int, Value, error) {
	if len(buf) == 0 {
		return 0, Value{}, ErrIncomplete
	}

	switch ValueType(buf[0]) {
	case TypeSimpleString:
		return decodeLineValue(buf, TypeSimpleString)
	case TypeError:
		return decodeLineValue(buf, TypeError)
	case TypeInteger:
		return decodeInteger(buf)
	case TypeBulkString:
		return decodeBulk(buf)
	case TypeArray:
		return d.decodeArray(buf)
	default:
		if d.AllowInline {
			return decodeInline(buf)
		}
		return 0, Value{}, ErrFraming
	}
}

// readLine finds the first CRLF-terminated line at the front of buf.
// Returns the line content (without CRLF), the total bytes consumed
// (including CRLF), and ok=false if no full line is present yet.
func readLine(buf []byte) (line []byte, consumed int, ok bool) {
	idx := bytes.Index(buf, []byte(CRLF))
	if idx < 0 {
		return nil, 0, false
	}
	return buf[:idx], idx + 2, true
}

func decodeLineValue(buf []byte, typ ValueType) (int, Value, error) {
	line, n, ok := readLine(buf[1:])
	if !ok {
		return 0, Value{}, ErrIncomplete
	}
	return 1 + n, Value{Type: typ, Str: append([]byte(nil), line...)}, nil
}

func decodeInteger(buf []byte) (int, Value, error) {
	line, n, ok := readLine(buf[1:])
	if !ok {
		return 0, Value{}, ErrIncomplete
	}
	i, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return 0, Value{}, ErrFraming
	}
	return 1 + n, Value{Type: TypeInteger, Int: i}, nil
}

func decodeBulk(buf []byte) (int, Value, error) {
	lenLine, n, ok := readLine(buf[1:])
	if !ok {
		return 0, Value{}, ErrIncomplete
	}
	length, err := strconv.ParseInt(string(lenLine), 10, 64)
	if err != nil {
		return 0, Value{}, ErrFraming
	}
	consumed := 1 + n
	if length == -1 {
		return consumed, NullBulkString(), nil
	}
	if length < 0 {
		return 0, Value{}, ErrFraming
	}
	need := consumed + int(length) + 2
	if len(buf) < need {
		return 0, Value{}, ErrIncomplete
	}
	payload := buf[consumed : consumed+int(length)]
	if buf[consumed+int(length)] != '\r' || buf[consumed+int(length)+1] != '\n' {
		return 0, Value{}, ErrFraming
	}
	return need, Bulk(append([]byte(nil), payload...)), nil
}

func (d *Decoder) decodeArray(buf []byte) (int, Value, error) {
	lenLine, n, ok := readLine(buf[1:])
	if !ok {
		return 0, Value{}, ErrIncomplete
	}
	length, err := strconv.ParseInt(string(lenLine), 10, 64)
	if err != nil {
		return 0, Value{}, ErrFraming
	}
	consumed := 1 + n
	if length == -1 {
		return consumed, NullArrayValue(), nil
	}
	if length < 0 {
		return 0, Value{}, ErrFraming
	}

	elems := make([]Value, 0, length)
	for i := int64(0); i < length; i++ {
		elemN, v, err := d.Decode(buf[consumed:])
		if err != nil {
			return 0, Value{}, err
		}
		consumed += elemN
		elems = append(elems, v)
	}
	return consumed, Arr(elems), nil
}

// decodeInline tokenizes a non-RESP line (one not beginning with
// +-$:*) the way an interactive redis-cli session would type it:
// whitespace separated, with single or double quoted spans treated as
// one token. The result is wrapped as an array of simple strings, the
// same shape a RESP array of bulk strings would produce for the
// command parser downstream.
func decodeInline(buf []byte) (int, Value, error) {
	line, n, ok := readLine(buf)
	if !ok {
		return 0, Value{}, ErrIncomplete
	}
	tokens, err := shellSplit(string(line))
	if err != nil {
		return 0, Value{}, ErrFraming
	}
	elems := make([]Value, 0, len(tokens))
	for _, t := range tokens {
		elems = append(elems, SimpleString(t))
	}
	return n, Arr(elems), nil
}

// shellSplit splits s on whitespace, treating '...' and "..." spans as
// single tokens (no escape handling beyond that — good enough for the
// interactive inline-command surface, not a general shell grammar).
func shellSplit(s string) ([]string, error) {
	var tokens []string
	var cur []byte
	inSingle, inDouble := false, false
	hasCur := false

	flush := func() {
		if hasCur {
			tokens = append(tokens, string(cur))
			cur = cur[:0]
			hasCur = false
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inSingle:
			if c == '\'' {
				inSingle = false
			} else {
				cur = append(cur, c)
			}
		case inDouble:
			if c == '"' {
				inDouble = false
			} else {
				cur = append(cur, c)
			}
		case c == '\'':
			inSingle, hasCur = true, true
		case c == '"':
			inDouble, hasCur = true, true
		case c == ' ' || c == '\t':
			flush()
		default:
			cur = append(cur, c)
			hasCur = true
		}
	}
	if inSingle || inDouble {
		return nil, errors.New("proto: unterminated quote")
	}
	flush()
	return tokens, nil
}
