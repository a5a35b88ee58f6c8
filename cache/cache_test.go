package cache

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCache(t *testing.T) {
	c, err := New(0)
	require.NoError(t, err)
	require.Nil(t, c)

	c.Add("cats", "cat")
	_, ok := c.Get("cats")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	calls := 0
	fn := func(string) string { calls++; return "cat" }
	assert.Equal(t, "cat", c.GetOrCompute("cats", fn))
	assert.Equal(t, "cat", c.GetOrCompute("cats", fn))
	assert.Equal(t, 2, calls)
	c.Purge()
}

func TestNegativeSize(t *testing.T) {
	_, err := New(-1)
	require.Error(t, err)
}

func TestGetOrCompute(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	calls := 0
	fn := func(w string) string { calls++; return w[:len(w)-1] }
	assert.Equal(t, "cat", c.GetOrCompute("cats", fn))
	assert.Equal(t, "cat", c.GetOrCompute("cats", fn))
	assert.Equal(t, 1, calls)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)

	c.Add("dogs", "dog")
	c.Add("rats", "rat")
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("cats")
	assert.False(t, ok, "least recently used entry is evicted")

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c, err := New(64)
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				w := strconv.Itoa(j % 80)
				assert.Equal(t, w+"!", c.GetOrCompute(w, func(s string) string { return s + "!" }))
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 64)
}
