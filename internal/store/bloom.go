package store

import (
	"github.com/bits-and-blooms/bloom/v3"
)

// desiredFailureRate and estInserts are BINSERT's lazy-instantiation
// parameters.
const (
	desiredFailureRate = 0.05
	estInserts         = 10
)

// Bloom wraps a bits-and-blooms/bloom/v3 filter sized for
// desiredFailureRate/estInserts at creation. It never produces false
// negatives; false positives are expected and permitted for unrelated
// values.
type Bloom struct {
	filter *bloom.BloomFilter
}

// NewBloom lazily instantiates a filter the way BINSERT does on first
// use for a key.
func NewBloom() *Bloom {
	return &Bloom{filter: bloom.NewWithEstimates(estInserts, desiredFailureRate)}
}

// Insert adds a value to the filter.
func (b *Bloom) Insert(v Value) { b.filter.Add(v) }

// Contains reports whether v may be in the filter.
func (b *Bloom) Contains(v Value) bool { return b.filter.Test(v) }

// GobEncode/GobDecode delegate to the underlying filter's own gob
// support. Without these, gob would silently skip filter (an
// unexported field) when encoding Bloom and snapshots would restore
// empty filters.
func (b *Bloom) GobEncode() ([]byte, error) { return b.filter.GobEncode() }

func (b *Bloom) GobDecode(data []byte) error {
	b.filter = &bloom.BloomFilter{}
	return b.filter.GobDecode(data)
}
