package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcurrentMapSetGetDelete(t *testing.T) {
	cm := NewConcurrentMap()
	assert.True(t, cm.Set("k", []byte("v1")))
	assert.False(t, cm.Set("k", []byte("v2")))

	v, ok := cm.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), v)

	assert.True(t, cm.Delete("k"))
	assert.False(t, cm.Delete("k"))
	_, ok = cm.Get("k")
	assert.False(t, ok)
}

func TestConcurrentMapParallelAccess(t *testing.T) {
	cm := NewConcurrentMap()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%8)
			cm.Set(key, []byte(fmt.Sprintf("v%d", i)))
			cm.Get(key)
		}(i)
	}
	wg.Wait()
}
