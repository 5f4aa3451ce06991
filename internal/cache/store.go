// Package cache provides a generic in-memory key/value store with per-entry
// TTL, lazy expiry, and single-flight computation of missing values.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Store maps string keys to values of type V. It owns its entries
// exclusively: values go in and out by copy, and callers never hold a lock
// across a compute call.
//
// Expiry is lazy. An entry past its TTL behaves as absent on Get, but the
// value is demoted to a stale side slot where GetStale can still reach it.
// The stale slot always holds the most recent value ever stored for a key,
// which is what degraded-mode fallback wants: the last known good data.
type Store[V any] struct {
	clock clockwork.Clock
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]entry[V]
	stale   map[string]V
}

type entry[V any] struct {
	value      V
	insertedAt time.Time
	ttl        time.Duration
}

// New creates an empty store. Pass nil to use the real clock.
func New[V any](clock clockwork.Clock) *Store[V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store[V]{
		clock:   clock,
		entries: make(map[string]entry[V]),
		stale:   make(map[string]V),
	}
}

// Get returns the fresh value for key. An expired entry reads as absent and
// is demoted to the stale slot.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key)
}

func (s *Store[V]) getLocked(key string) (V, bool) {
	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if s.clock.Now().Sub(e.insertedAt) >= e.ttl {
		delete(s.entries, key)
		s.stale[key] = e.value
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the given TTL, refreshing the stale slot
// as well.
func (s *Store[V]) Set(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[V]{value: value, insertedAt: s.clock.Now(), ttl: ttl}
	s.stale[key] = value
}

// GetStale returns the last value ever stored for key, fresh or not.
func (s *Store[V]) GetStale(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.stale[key]; ok {
		return v, true
	}
	var zero V
	return zero, false
}

// GetOrCompute returns the fresh value for key, calling compute exactly once
// when the key is absent or expired, even under concurrent callers for the
// same key. Every caller waiting on the in-flight computation receives the
// same result. A compute error is returned to all waiters and nothing is
// cached; the stale slot keeps whatever it held before.
//
// Different keys compute fully in parallel.
func (s *Store[V]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (V, error)) (V, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// A waiter that lost the race may arrive after the winner already
		// stored the value.
		if v, ok := s.Get(key); ok {
			return v, nil
		}
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}
