package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetSet(t *testing.T) {
	t.Parallel()

	c := New[string, int](time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("a", 2)
	v, _ = c.Get("a")
	assert.Equal(t, 2, v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestCacheLazyExpiry(t *testing.T) {
	t.Parallel()

	c := New[string, string](time.Minute)

	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("k", "v")

	// Still live just inside the TTL.
	current = current.Add(59 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	// Past the TTL the read is a miss and removes the entry.
	current = current.Add(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry deleted on read")
}

func TestCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New[string, int](time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%10)
			c.Set(key, n)
			c.Get(key)
			c.Delete(fmt.Sprintf("key-%d", (n+5)%10))
		}(i)
	}
	wg.Wait()
}
