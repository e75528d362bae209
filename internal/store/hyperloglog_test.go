package store

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHyperLogLogCountWithinErrorBound(t *testing.T) {
	h := NewHyperLogLog()
	const n = 20000
	for i := 0; i < n; i++ {
		h.Add([]byte(fmt.Sprintf("elem-%d", i)))
	}
	estimate := float64(h.Count())
	errRatio := math.Abs(estimate-n) / n
	assert.Less(t, errRatio, 0.05, "estimate %v too far from true cardinality %v", estimate, n)
}

func TestHyperLogLogMergeIsUnion(t *testing.T) {
	a := NewHyperLogLog()
	b := NewHyperLogLog()
	for i := 0; i < 1000; i++ {
		a.Add([]byte(fmt.Sprintf("a-%d", i)))
	}
	for i := 0; i < 1000; i++ {
		b.Add([]byte(fmt.Sprintf("b-%d", i)))
	}
	a.Merge(b)
	estimate := float64(a.Count())
	errRatio := math.Abs(estimate-2000) / 2000
	assert.Less(t, errRatio, 0.05)
}

func TestHyperLogLogEmptyIsZero(t *testing.T) {
	h := NewHyperLogLog()
	assert.Equal(t, Count(0), h.Count())
}
