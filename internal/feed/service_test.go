package feed

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmicwatch/neo-monitor-service/internal/adapter/nasa"
	"github.com/cosmicwatch/neo-monitor-service/internal/cache"
	"github.com/cosmicwatch/neo-monitor-service/internal/domain"
	"github.com/cosmicwatch/neo-monitor-service/internal/observability"
)

// countingFetcher returns a fixed batch and counts upstream calls; an error,
// when set, applies from call number failFrom onward.
type countingFetcher struct {
	mu       sync.Mutex
	calls    int
	objects  []domain.NearEarthObject
	err      error
	failFrom int // 0 means never fail
	gate     chan struct{}
}

func (f *countingFetcher) FetchFeed(context.Context, domain.Date, domain.Date) ([]domain.NearEarthObject, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	if f.failFrom > 0 && n >= f.failFrom {
		return nil, f.err
	}
	return f.objects, nil
}

func (f *countingFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingPublisher struct {
	mu        sync.Mutex
	snapshots []domain.FeedSnapshot
}

func (p *recordingPublisher) PublishSnapshot(_ context.Context, snap domain.FeedSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, snap)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testObjects() []domain.NearEarthObject {
	return []domain.NearEarthObject{
		{ID: "a1", Name: "Alpha", IsHazardous: true, DiameterKm: 0.3, MissDistanceKm: 7_000_000, VelocityKph: 65_000},
		{ID: "b2", Name: "Beta", DiameterKm: 0.05, MissDistanceKm: 2_000_000, VelocityKph: 30_000},
	}
}

func testService(fetcher Fetcher, clock clockwork.Clock, publisher Publisher) *Service {
	store := cache.New[[]domain.NearEarthObject](clock)
	return NewService(fetcher, store, publisher, 300*time.Second, discardLogger(), observability.NewMetricsForTesting())
}

func dates(t *testing.T) (domain.Date, domain.Date) {
	t.Helper()
	start, err := domain.ParseDate("2026-03-01")
	require.NoError(t, err)
	return start, start.AddDays(1)
}

func TestGetFeed_ScoresObjects(t *testing.T) {
	fetcher := &countingFetcher{objects: testObjects()}
	svc := testService(fetcher, nil, nil)
	start, end := dates(t)

	res, err := svc.GetFeed(context.Background(), start, end)
	require.NoError(t, err)

	assert.True(t, res.IsRealData)
	assert.Equal(t, StatusLive, res.Status)
	require.Len(t, res.Snapshot.Objects, 2)
	assert.Equal(t, "a1", res.Snapshot.Objects[0].ID)
	assert.NotZero(t, res.Snapshot.Objects[0].Risk.Score)
	assert.Equal(t, 2, res.Snapshot.Statistics.TotalCount)
	assert.Equal(t, 1, res.Snapshot.Statistics.HazardousCount)
}

func TestGetFeed_IdempotentWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &countingFetcher{objects: testObjects()}
	svc := testService(fetcher, clock, nil)
	start, end := dates(t)

	_, err := svc.GetFeed(context.Background(), start, end)
	require.NoError(t, err)
	_, err = svc.GetFeed(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.callCount(), "second call within the TTL must hit the cache")

	clock.Advance(301 * time.Second)
	_, err = svc.GetFeed(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.callCount(), "expired cache must refetch")
}

func TestGetFeed_SingleFlight(t *testing.T) {
	fetcher := &countingFetcher{objects: testObjects(), gate: make(chan struct{})}
	svc := testService(fetcher, nil, nil)
	start, end := dates(t)

	const callers = 10
	var wg sync.WaitGroup
	results := make([]Result, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			results[i], err = svc.GetFeed(context.Background(), start, end)
			assert.NoError(t, err)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(fetcher.gate)
	wg.Wait()

	assert.Equal(t, 1, fetcher.callCount(), "concurrent callers for one range must coalesce")
	for i := range callers {
		assert.Equal(t, StatusLive, results[i].Status)
		assert.Len(t, results[i].Snapshot.Objects, 2)
	}
}

func TestGetFeed_FallbackWhenNoCache(t *testing.T) {
	fetcher := &countingFetcher{err: nasa.ErrRateLimited, failFrom: 1}
	svc := testService(fetcher, nil, nil)
	start, end := dates(t)

	res, err := svc.GetFeed(context.Background(), start, end)
	require.NoError(t, err, "degraded mode must not surface an error")

	assert.False(t, res.IsRealData)
	assert.Equal(t, StatusFallback, res.Status)
	require.Len(t, res.Snapshot.Objects, len(nasa.SampleObjects()))
	assert.Equal(t, "3542519", res.Snapshot.Objects[0].ID)
}

func TestGetFeed_StalePreferredOverFallback(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &countingFetcher{objects: testObjects(), err: nasa.ErrUnavailable, failFrom: 2}
	svc := testService(fetcher, clock, nil)
	start, end := dates(t)

	// First call populates the cache with real data.
	res, err := svc.GetFeed(context.Background(), start, end)
	require.NoError(t, err)
	require.Equal(t, StatusLive, res.Status)

	// TTL passes; the refetch fails; the expired entry is served instead.
	clock.Advance(301 * time.Second)
	res, err = svc.GetFeed(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, StatusStale, res.Status)
	assert.True(t, res.IsRealData, "stale real data still counts as real")
	require.Len(t, res.Snapshot.Objects, 2)
	assert.Equal(t, "a1", res.Snapshot.Objects[0].ID)
}

func TestGetFeed_InvalidRangeFailsFast(t *testing.T) {
	fetcher := &countingFetcher{objects: testObjects()}
	svc := testService(fetcher, nil, nil)
	start, end := dates(t)

	_, err := svc.GetFeed(context.Background(), end, start)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date range")
	assert.Zero(t, fetcher.callCount(), "contract violations must not reach upstream")
}

func TestGetFeed_PublishesOncePerFetch(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &countingFetcher{objects: testObjects()}
	publisher := &recordingPublisher{}
	svc := testService(fetcher, clock, publisher)
	start, end := dates(t)

	for range 3 {
		_, err := svc.GetFeed(context.Background(), start, end)
		require.NoError(t, err)
	}

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	require.Len(t, publisher.snapshots, 1, "cached reads must not republish")
	assert.Len(t, publisher.snapshots[0].Objects, 2)
}

func TestService_Readiness(t *testing.T) {
	fetcher := &countingFetcher{objects: testObjects()}
	svc := testService(fetcher, nil, nil)

	require.Error(t, svc.CheckReadiness(context.Background()))

	start, end := dates(t)
	_, err := svc.GetFeed(context.Background(), start, end)
	require.NoError(t, err)

	assert.NoError(t, svc.CheckReadiness(context.Background()))
}
