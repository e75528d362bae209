package command

import (
	"testing"

	"github.com/kvforge/respkv/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtractsNameAndArgs(t *testing.T) {
	req := proto.Arr([]proto.Value{
		proto.Bulk([]byte("set")),
		proto.Bulk([]byte("foo")),
		proto.Bulk([]byte("bar")),
	})
	cmd, err := Parse(req)
	require.NoError(t, err)
	assert.Equal(t, "SET", cmd.Name)
	assert.Equal(t, [][]byte{[]byte("foo"), []byte("bar")}, cmd.Args)
}

func TestParseRejectsNonArray(t *testing.T) {
	_, err := Parse(proto.Bulk([]byte("PING")))
	assert.Error(t, err)
}

func TestParseRejectsEmptyArray(t *testing.T) {
	_, err := Parse(proto.Arr(nil))
	assert.Error(t, err)
}

func TestArityHelpers(t *testing.T) {
	assert.True(t, Exact([][]byte{{1}, {2}}, 2))
	assert.False(t, Exact([][]byte{{1}}, 2))
	assert.True(t, AtLeast([][]byte{{1}, {2}, {3}}, 2))
	assert.True(t, Even([][]byte{{1}, {2}}))
	assert.False(t, Even([][]byte{{1}, {2}, {3}}))

	n, ok := ParseInt([]byte("-42"))
	assert.True(t, ok)
	assert.Equal(t, int64(-42), n)

	_, ok = ParseInt([]byte("not-a-number"))
	assert.False(t, ok)
}
