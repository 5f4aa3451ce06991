package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmicwatch/neo-monitor-service/internal/domain"
	"github.com/cosmicwatch/neo-monitor-service/internal/feed"
	"github.com/cosmicwatch/neo-monitor-service/internal/observability"
)

type countingSource struct {
	mu    sync.Mutex
	calls int
	seen  chan struct{}
}

func (s *countingSource) GetFeed(ctx context.Context, start, end domain.Date) (feed.Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	s.seen <- struct{}{}
	return feed.Result{Snapshot: domain.FeedSnapshot{}, IsRealData: true, Status: feed.StatusLive}, nil
}

func (s *countingSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestScheduler_RunsImmediatelyAndOnEachTick(t *testing.T) {
	source := &countingSource{seen: make(chan struct{})}
	clock := clockwork.NewFakeClock()

	ev := newTestEvaluator(t, source, NewMemoryRuleRepository(), &recordingNotifier{}, clock)
	metrics := observability.NewMetricsForTesting()
	sched := NewScheduler(ev, time.Minute, clock, testLogger(), metrics)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Start(ctx)
		close(done)
	}()

	// Immediate first cycle, before any tick.
	waitForCycle(t, source)
	assert.Equal(t, 1, source.count())

	// Each interval elapsed drives exactly one more cycle.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)
	waitForCycle(t, source)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)
	waitForCycle(t, source)
	assert.Equal(t, 3, source.count())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func waitForCycle(t *testing.T, source *countingSource) {
	t.Helper()
	select {
	case <-source.seen:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for alert cycle")
	}
}
