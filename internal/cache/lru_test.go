package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type memoKey struct {
	version string
	year    int
}

func TestLRU_BasicGetPut(t *testing.T) {
	c := New[string, int](3)

	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_Eviction(t *testing.T) {
	c := New[string, string](2)

	c.Put("a", "A")
	c.Put("b", "B")
	c.Put("c", "C") // evicts "a"

	_, ok := c.Get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_AccessPromotesEntry(t *testing.T) {
	c := New[string, string](2)

	c.Put("a", "A")
	c.Put("b", "B")
	c.Get("a")
	c.Put("c", "C")

	_, ok := c.Get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")
	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRU_UpdateExisting(t *testing.T) {
	c := New[string, string](2)

	c.Put("a", "A1")
	c.Put("a", "A2")

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", v)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_StructKeys(t *testing.T) {
	c := New[memoKey, int](4)

	c.Put(memoKey{"v1", 2010}, 1)
	c.Put(memoKey{"v2", 2010}, 2)

	v, _ := c.Get(memoKey{"v1", 2010})
	assert.Equal(t, 1, v)
	v, _ = c.Get(memoKey{"v2", 2010})
	assert.Equal(t, 2, v, "a new dataset version does not reuse old entries")
}

func TestLRU_Disabled(t *testing.T) {
	c := New[string, int](0)

	c.Put("a", 1)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRU_Purge(t *testing.T) {
	c := New[int, int](2)
	c.Put(1, 1)
	c.Put(2, 2)

	c.Purge()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get(1)
	assert.False(t, ok)
	c.Put(3, 3)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := New[string, int](16)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("k%d", (i+j)%32)
				c.Put(key, j)
				c.Get(key)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
}
