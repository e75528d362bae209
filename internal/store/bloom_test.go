package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// A bloom filter must never produce a false negative: every value
// inserted must test as contained afterwards, regardless of
// collisions with other inserts.
func TestBloomNoFalseNegatives(t *testing.T) {
	b := NewBloom()
	inserted := make([][]byte, 0, 10)
	for i := 0; i < 10; i++ {
		v := []byte(fmt.Sprintf("member-%d", i))
		b.Insert(v)
		inserted = append(inserted, v)
	}
	for _, v := range inserted {
		assert.True(t, b.Contains(v))
	}
}

func TestBloomRejectsObviouslyAbsent(t *testing.T) {
	b := NewBloom()
	b.Insert([]byte("present"))
	assert.False(t, b.Contains([]byte("a-value-nobody-ever-inserted-zzz")))
}
