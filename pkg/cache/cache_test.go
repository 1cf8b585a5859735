package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursewise/coursewise/pkg/models"
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

func newTestCache(t *testing.T, opts ...Option) (*Cache, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	return New(append([]Option{WithClock(clk.Now)}, opts...)...), clk
}

func sampleResult(title string) models.RecommendationResult {
	return models.RecommendationResult{
		Recommendations: []models.Recommendation{{CourseTitle: title, Reason: "fits"}},
		Explanation:     "because",
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "hi there", NormalizeKey("  Hi There \n"))
	assert.Equal(t, "hi there", NormalizeKey("HI THERE"))
}

func TestKeyNormalization(t *testing.T) {
	c, _ := newTestCache(t)
	c.Put("HI THERE", sampleResult("Go"))

	for _, k := range []string{"  Hi There ", "hi there", "HI THERE"} {
		got, ok := c.Get(k)
		require.True(t, ok, "expected hit for %q", k)
		assert.Equal(t, "Go", got.Recommendations[0].CourseTitle)
	}
	assert.Equal(t, 1, c.Len())
}

func TestGetMarksCached(t *testing.T) {
	c, _ := newTestCache(t)
	stored := sampleResult("Go")
	ms := int64(842)
	stored.ResponseTimeMs = &ms
	c.Put("prompt", stored)

	got, ok := c.Get("prompt")
	require.True(t, ok)
	assert.True(t, got.Cached)
	require.NotNil(t, got.ResponseTimeMs)
	assert.Equal(t, HitResponseTimeMs, *got.ResponseTimeMs)
}

func TestGetReturnsCopy(t *testing.T) {
	c, _ := newTestCache(t)
	c.Put("prompt", sampleResult("Go"))

	got, _ := c.Get("prompt")
	got.Recommendations[0].CourseTitle = "mutated"

	again, _ := c.Get("prompt")
	assert.Equal(t, "Go", again.Recommendations[0].CourseTitle)
}

func TestTTLBoundary(t *testing.T) {
	c, clk := newTestCache(t)
	c.Put("prompt", sampleResult("Go"))

	clk.Advance(DefaultTTL - time.Second)
	_, ok := c.Get("prompt")
	assert.True(t, ok, "entry should still be served just before TTL")

	clk.Advance(2 * time.Second)
	_, ok = c.Get("prompt")
	assert.False(t, ok, "entry should be absent just after TTL")
	assert.Equal(t, 1, c.Len(), "expired entries are shadowed, not purged")
}

func TestFIFOEviction(t *testing.T) {
	c, _ := newTestCache(t)

	for i := 1; i <= DefaultCapacity+1; i++ {
		c.Put(fmt.Sprintf("key-%d", i), sampleResult(fmt.Sprintf("course %d", i)))
	}

	assert.Equal(t, DefaultCapacity, c.Len())
	_, ok := c.Get("key-1")
	assert.False(t, ok, "first inserted key should be evicted")
	for i := 2; i <= DefaultCapacity+1; i++ {
		_, ok := c.Get(fmt.Sprintf("key-%d", i))
		assert.True(t, ok, "key-%d should be present", i)
	}
}

func TestEvictionIgnoresReads(t *testing.T) {
	c, _ := newTestCache(t, WithCapacity(2))
	c.Put("a", sampleResult("A"))
	c.Put("b", sampleResult("B"))

	// Reading "a" does not protect it: eviction is by insertion order.
	_, _ = c.Get("a")
	c.Put("c", sampleResult("C"))

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestOverwriteRefreshesInsertion(t *testing.T) {
	c, clk := newTestCache(t, WithCapacity(2))
	c.Put("a", sampleResult("A"))
	c.Put("b", sampleResult("B"))
	clk.Advance(time.Minute)
	c.Put("A", sampleResult("A2"))
	c.Put("c", sampleResult("C"))

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A2", got.Recommendations[0].CourseTitle)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestConcurrentPutsRespectCapacity(t *testing.T) {
	c, _ := newTestCache(t, WithCapacity(10))

	var wg conc.WaitGroup
	for i := range 100 {
		wg.Go(func() {
			c.Put(fmt.Sprintf("k%d", i), sampleResult("x"))
			c.Get(fmt.Sprintf("k%d", i))
		})
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
}

func TestStatsAndClear(t *testing.T) {
	c, clk := newTestCache(t, WithTTL(time.Minute))
	c.Put("old", sampleResult("Old"))
	clk.Advance(2 * time.Minute)
	c.Put("new", sampleResult("New"))

	c.Get("new")     // hit
	c.Get("old")     // miss (expired)
	c.Get("missing") // miss

	st := c.Stats()
	assert.Equal(t, 2, st.Entries)
	assert.Equal(t, DefaultCapacity, st.Capacity)
	assert.EqualValues(t, 1, st.Hits)
	assert.EqualValues(t, 2, st.Misses)

	assert.Equal(t, 1, c.Clear(true))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.Clear(false))
	assert.Equal(t, 0, c.Len())
}
