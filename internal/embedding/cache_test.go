package embedding

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetPut(t *testing.T) {
	c := NewCache(2)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("a", []float32{1})
	vec, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []float32{1}, vec)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	c.Put("a", []float32{1})
	c.Put("b", []float32{2})

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", []float32{3})
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestCacheUpdateExisting(t *testing.T) {
	c := NewCache(2)
	c.Put("a", []float32{1})
	c.Put("a", []float32{2})
	assert.Equal(t, 1, c.Len())

	vec, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []float32{2}, vec)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache(50)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("q-%d", i%60)
				c.Put(key, []float32{float32(g), float32(i)})
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 50)
}
