package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUCacheSetGet(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", []byte("one"))
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("one"), got)

	c.Set("a", []byte("two"))
	got, _ = c.Get("a")
	assert.Equal(t, []byte("two"), got)
	assert.Equal(t, 1, c.Size())
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache(10, 10*time.Millisecond)
	c.Set("a", []byte("one"))

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache(2, time.Minute)
	c.Set("a", []byte("1"))
	time.Sleep(time.Millisecond)
	c.Set("b", []byte("2"))
	time.Sleep(time.Millisecond)
	c.Set("c", []byte("3"))

	assert.Equal(t, 2, c.Size())
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRUCacheInvalidateAll(t *testing.T) {
	c := NewLRUCache(10, time.Minute)
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	c.InvalidateAll()

	assert.Equal(t, 0, c.Size())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestNewLRUCacheClampsBadArgs(t *testing.T) {
	c := NewLRUCache(0, 0)
	c.Set("a", []byte("1"))
	_, ok := c.Get("a")
	assert.True(t, ok)
}
