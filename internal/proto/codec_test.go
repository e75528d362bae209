package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTripCases() []Value {
	return []Value{
		SimpleString("OK"),
		Err("ERR bad thing"),
		Bulk([]byte("hello")),
		Bulk([]byte("")),
		Int(42),
		Int(-7),
		NullBulkString(),
		NullArrayValue(),
		Arr(nil),
		Arr([]Value{Bulk([]byte("foo")), Bulk([]byte("bar"))}),
		Arr([]Value{Int(1), Int(2), Int(3)}),
		Arr([]Value{
			Arr([]Value{Int(1), Int(2)}),
			Arr([]Value{SimpleString("Foo"), Err("Bar")}),
		}),
		Arr([]Value{Bulk([]byte("foo")), NullBulkString(), Bulk([]byte("bar"))}),
	}
}

func TestCodecRoundTrip(t *testing.T) {
	d := NewDecoder()
	for _, v := range roundTripCases() {
		encoded := EncodeBytes(v)
		n, decoded, err := d.Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, len(encoded), n)
		reEncoded := EncodeBytes(decoded)
		assert.Equal(t, encoded, reEncoded)
	}
}

func TestCodecConcatenatedFrames(t *testing.T) {
	d := NewDecoder()
	a := EncodeBytes(Bulk([]byte("foo")))
	b := EncodeBytes(Int(7))
	buf := append(append([]byte{}, a...), b...)

	n1, v1, err := d.Decode(buf)
	require.NoError(t, err)
	n2, v2, err := d.Decode(buf[n1:])
	require.NoError(t, err)

	assert.Equal(t, Bulk([]byte("foo")), v1)
	assert.Equal(t, Int(7), v2)
	assert.Equal(t, len(buf), n1+n2)
}

func TestCodecPartialFrameSafety(t *testing.T) {
	d := NewDecoder()
	full := EncodeBytes(Arr([]Value{
		Bulk([]byte("SET")),
		Bulk([]byte("key")),
		Bulk([]byte("a-fairly-long-value-to-split-across-many-prefixes")),
	}))

	for i := 0; i <= len(full); i++ {
		n, _, err := d.Decode(full[:i])
		if i < len(full) {
			assert.ErrorIs(t, err, ErrIncomplete)
			assert.Equal(t, 0, n)
		}
	}

	// One-shot decode of the whole buffer matches piecewise accumulation.
	n, oneShot, err := d.Decode(full)
	require.NoError(t, err)
	require.Equal(t, len(full), n)

	var acc []byte
	var final Value
	for i := 0; i < len(full); i++ {
		acc = append(acc, full[i])
		n, v, err := d.Decode(acc)
		if err == nil {
			final = v
			assert.Equal(t, len(acc), n)
			break
		}
		assert.ErrorIs(t, err, ErrIncomplete)
	}
	assert.Equal(t, oneShot, final)
}

func TestCodecFramingErrors(t *testing.T) {
	d := NewDecoder()
	d.AllowInline = false

	_, _, err := d.Decode([]byte("!nope\r\n"))
	assert.ErrorIs(t, err, ErrFraming)

	_, _, err = d.Decode([]byte("$abc\r\nhello\r\n"))
	assert.ErrorIs(t, err, ErrFraming)

	_, _, err = d.Decode([]byte("$-2\r\n"))
	assert.ErrorIs(t, err, ErrFraming)
}

func TestCodecInlineCommand(t *testing.T) {
	d := NewDecoder()
	n, v, err := d.Decode([]byte("SET foo \"bar baz\"\r\n"))
	require.NoError(t, err)
	assert.Equal(t, len("SET foo \"bar baz\"\r\n"), n)
	require.Equal(t, TypeArray, v.Type)
	require.Len(t, v.Array, 3)
	assert.Equal(t, []byte("SET"), v.Array[0].Str)
	assert.Equal(t, []byte("foo"), v.Array[1].Str)
	assert.Equal(t, []byte("bar baz"), v.Array[2].Str)
}

func TestCodecLiteralWireBytes(t *testing.T) {
	d := NewDecoder()

	n, v, err := d.Decode([]byte("*1\r\n$4\r\nPING\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 14, n)
	assert.Equal(t, []byte("PING"), v.Array[0].Str)

	pong := EncodeBytes(SimpleString("PONG"))
	assert.Equal(t, "+PONG\r\n", string(pong))
}
