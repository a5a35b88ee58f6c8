// Package cache memoises stems in a bounded LRU.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache maps words to stems. A nil *Cache is valid and caches nothing.
type Cache struct {
	lru    *lru.Cache[string, string]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New returns a cache holding up to size entries, or nil when size is 0.
func New(size int) (*Cache, error) {
	if size == 0 {
		return nil, nil
	}
	l, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

func (c *Cache) Get(word string) (string, bool) {
	if c == nil {
		return "", false
	}
	stem, ok := c.lru.Get(word)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return stem, ok
}

func (c *Cache) Add(word, stem string) {
	if c == nil {
		return
	}
	c.lru.Add(word, stem)
}

// GetOrCompute returns the cached stem of word or stores fn(word).
func (c *Cache) GetOrCompute(word string, fn func(string) string) string {
	if stem, ok := c.Get(word); ok {
		return stem
	}
	stem := fn(word)
	c.Add(word, stem)
	return stem
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func (c *Cache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}
