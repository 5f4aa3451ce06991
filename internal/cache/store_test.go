package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSet(t *testing.T) {
	s := New[string](nil)

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("k", "v", time.Minute)

	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestStore_LazyExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New[string](clock)

	s.Set("k", "v1", 5*time.Minute)

	clock.Advance(5*time.Minute - time.Second)
	_, ok := s.Get("k")
	assert.True(t, ok, "entry should still be fresh just before the TTL")

	clock.Advance(time.Second)
	_, ok = s.Get("k")
	assert.False(t, ok, "entry at its TTL should read as absent")

	// The expired value survives in the stale slot.
	stale, ok := s.GetStale("k")
	require.True(t, ok)
	assert.Equal(t, "v1", stale)
}

func TestStore_SetRefreshesStaleSlot(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New[string](clock)

	s.Set("k", "v1", time.Minute)
	s.Set("k", "v2", time.Minute)

	stale, ok := s.GetStale("k")
	require.True(t, ok)
	assert.Equal(t, "v2", stale)
}

func TestStore_GetStaleMissingKey(t *testing.T) {
	s := New[int](nil)

	_, ok := s.GetStale("never-set")
	assert.False(t, ok)
}

func TestGetOrCompute_CachesWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New[int](clock)

	var calls atomic.Int64
	compute := func(context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}

	v, err := s.GetOrCompute(context.Background(), "k", 5*time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = s.GetOrCompute(context.Background(), "k", 5*time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, int64(1), calls.Load(), "second call within TTL must not recompute")

	clock.Advance(6 * time.Minute)
	_, err = s.GetOrCompute(context.Background(), "k", 5*time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load(), "expired entry must recompute")
}

func TestGetOrCompute_SingleFlight(t *testing.T) {
	s := New[int](nil)

	const callers = 20
	var calls atomic.Int64
	gate := make(chan struct{})

	compute := func(context.Context) (int, error) {
		calls.Add(1)
		<-gate // hold the computation until all callers have piled up
		return 7, nil
	}

	var wg sync.WaitGroup
	results := make([]int, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.GetOrCompute(context.Background(), "k", time.Minute, compute)
		}()
	}

	// Let the in-flight computation win the race before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "concurrent callers must coalesce into one computation")
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, 7, results[i])
	}
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	s := New[int](nil)

	boom := errors.New("upstream down")
	_, err := s.GetOrCompute(context.Background(), "k", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)

	// The failure must not poison the key: the next call computes again.
	v, err := s.GetOrCompute(context.Background(), "k", time.Minute, func(context.Context) (int, error) {
		return 9, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestGetOrCompute_ErrorPreservesStaleSlot(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New[string](clock)

	s.Set("k", "last-good", time.Minute)
	clock.Advance(2 * time.Minute)

	_, err := s.GetOrCompute(context.Background(), "k", time.Minute, func(context.Context) (string, error) {
		return "", errors.New("fetch failed")
	})
	require.Error(t, err)

	stale, ok := s.GetStale("k")
	require.True(t, ok)
	assert.Equal(t, "last-good", stale)
}

func TestGetOrCompute_IndependentKeys(t *testing.T) {
	s := New[string](nil)

	var calls atomic.Int64
	for _, key := range []string{"a", "b"} {
		v, err := s.GetOrCompute(context.Background(), key, time.Minute, func(context.Context) (string, error) {
			calls.Add(1)
			return "v-" + key, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "v-"+key, v)
	}
	assert.Equal(t, int64(2), calls.Load())
}
