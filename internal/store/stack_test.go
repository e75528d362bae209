package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackPushPopOrder(t *testing.T) {
	s := NewStack()
	assert.Equal(t, Count(1), s.Push([]byte("a")))
	assert.Equal(t, Count(2), s.Push([]byte("b")))

	v, ok := s.Peek()
	assert.True(t, ok)
	assert.Equal(t, []byte("b"), v)

	v, ok = s.Pop()
	assert.True(t, ok)
	assert.Equal(t, []byte("b"), v)
	assert.Equal(t, Count(1), s.Size())

	v, ok = s.Pop()
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), v)
	assert.Equal(t, Count(0), s.Size())
}

func TestStackPopEmpty(t *testing.T) {
	s := NewStack()
	_, ok := s.Pop()
	assert.False(t, ok)
	_, ok = s.Peek()
	assert.False(t, ok)
}
