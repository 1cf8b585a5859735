package budget

import (
	"sync/atomic"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, New(0).Limit())
	assert.Equal(t, DefaultLimit, New(-3).Limit())
	assert.Equal(t, 7, New(7).Limit())
}

func TestTryReserveCeiling(t *testing.T) {
	l := New(3)

	for i := range 3 {
		require.True(t, l.TryReserve(), "reservation %d should be granted", i+1)
	}
	assert.False(t, l.TryReserve(), "reservation past the limit must be refused")
	assert.Equal(t, 3, l.Used())
	assert.Equal(t, 0, l.Remaining())
}

func TestRefusalDoesNotConsume(t *testing.T) {
	l := New(1)
	require.True(t, l.TryReserve())

	for range 5 {
		assert.False(t, l.TryReserve())
	}
	assert.Equal(t, 1, l.Used())
}

func TestStatus(t *testing.T) {
	l := New(10)
	l.TryReserve()
	l.TryReserve()

	st := l.Status()
	assert.Equal(t, 2, st.Used)
	assert.Equal(t, 10, st.Limit)
	assert.Equal(t, 8, st.Remaining)
}

func TestConcurrentReservations(t *testing.T) {
	const (
		capacity = 25
		callers  = 200
	)
	l := New(capacity)

	var granted, refused atomic.Int64
	var wg conc.WaitGroup
	for range callers {
		wg.Go(func() {
			if l.TryReserve() {
				granted.Add(1)
			} else {
				refused.Add(1)
			}
		})
	}
	wg.Wait()

	assert.EqualValues(t, capacity, granted.Load())
	assert.EqualValues(t, callers-capacity, refused.Load())
	assert.Equal(t, capacity, l.Used())
	assert.Equal(t, 0, l.Remaining())
}
