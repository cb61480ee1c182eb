package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type countingObserver struct {
	hits, misses atomic.Int32
}

func (o *countingObserver) CacheHit(string)  { o.hits.Add(1) }
func (o *countingObserver) CacheMiss(string) { o.misses.Add(1) }

func TestFetchCachesWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	obs := &countingObserver{}
	c := New(WithClock(clock.Now), WithObserver(obs))

	calls := 0
	load := func() (any, error) {
		calls++
		return calls, nil
	}

	v, err := c.Fetch("agents", 30*time.Second, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock.Advance(29 * time.Second)
	v, err = c.Fetch("agents", 30*time.Second, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v, "served from cache")
	assert.Equal(t, 1, calls)

	clock.Advance(time.Second)
	v, err = c.Fetch("agents", 30*time.Second, load)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "reloaded once the TTL elapsed")

	assert.Equal(t, int32(1), obs.hits.Load())
	assert.Equal(t, int32(2), obs.misses.Load())
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	c := New()
	boom := errors.New("boom")

	_, err := c.Fetch("k", time.Minute, func() (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := c.Fetch("k", time.Minute, func() (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestKeysAreIndependent(t *testing.T) {
	c := New()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	a, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, a)
	b, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, b)

	_, ok = c.Get("c")
	assert.False(t, ok)
}

func TestPurge(t *testing.T) {
	c := New()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Purge()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestConcurrentFetch(t *testing.T) {
	c := New()
	var loads atomic.Int32

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Fetch("shared", time.Minute, func() (any, error) {
				loads.Add(1)
				return "value", nil
			})
			assert.NoError(t, err)
			assert.Equal(t, "value", v)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, loads.Load(), int32(1))
	v, ok := c.Get("shared")
	assert.True(t, ok)
	assert.Equal(t, "value", v)
}
