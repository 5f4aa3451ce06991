// Package feed orchestrates the fetch -> cache -> score pipeline and is the
// primary read path for asteroid data.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cosmicwatch/neo-monitor-service/internal/adapter/nasa"
	"github.com/cosmicwatch/neo-monitor-service/internal/cache"
	"github.com/cosmicwatch/neo-monitor-service/internal/domain"
	"github.com/cosmicwatch/neo-monitor-service/internal/observability"
)

// ErrInvalidRange is returned when a requested range starts after it ends.
var ErrInvalidRange = errors.New("invalid date range")

// Status describes where a snapshot's data came from.
type Status string

const (
	// StatusLive means fresh or freshly cached upstream data.
	StatusLive Status = "live"
	// StatusStale means the upstream failed and an expired cache entry was served.
	StatusStale Status = "stale"
	// StatusFallback means no cached data existed and the static sample set was served.
	StatusFallback Status = "fallback"
)

// Result is a scored snapshot annotated with its data provenance.
type Result struct {
	Snapshot   domain.FeedSnapshot
	IsRealData bool
	Status     Status
}

// Fetcher retrieves raw objects for a date range from the upstream feed.
type Fetcher interface {
	FetchFeed(ctx context.Context, start, end domain.Date) ([]domain.NearEarthObject, error)
}

// Publisher receives each batch freshly fetched from upstream, already scored.
// Publish failures are logged, never propagated: downstream delivery must not
// break the read path.
type Publisher interface {
	PublishSnapshot(ctx context.Context, snapshot domain.FeedSnapshot) error
}

// Service produces feed snapshots, shielding the upstream API behind a TTL
// cache with single-flight request coalescing. Every call resolves to a
// usable snapshot: live data when the upstream cooperates, the last known
// good data when it does not, the static sample set when nothing else exists.
type Service struct {
	fetcher   Fetcher
	store     *cache.Store[[]domain.NearEarthObject]
	publisher Publisher // optional
	fallback  []domain.NearEarthObject
	ttl       time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// NewService creates a feed service. The publisher may be nil.
func NewService(fetcher Fetcher, store *cache.Store[[]domain.NearEarthObject], publisher Publisher, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		fetcher:   fetcher,
		store:     store,
		publisher: publisher,
		fallback:  nasa.SampleObjects(),
		ttl:       ttl,
		logger:    logger,
		metrics:   metrics,
	}
}

// GetFeed returns the scored snapshot for the inclusive date range.
//
// Concurrent calls for the same range coalesce into at most one upstream
// request; calls within the TTL window reuse the cached batch and recompute
// scores on read. Upstream failures degrade to stale cache, then to the
// static fallback set; they never surface as errors. The only hard failure
// is a contract violation: a range whose start falls after its end.
func (s *Service) GetFeed(ctx context.Context, start, end domain.Date) (Result, error) {
	if start.After(end) {
		return Result{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, start, end)
	}

	key := cacheKey(start, end)
	objects, err := s.store.GetOrCompute(ctx, key, s.ttl, func(ctx context.Context) ([]domain.NearEarthObject, error) {
		fetched, err := s.fetcher.FetchFeed(ctx, start, end)
		if err != nil {
			return nil, err
		}
		s.publish(ctx, start, end, fetched)
		return fetched, nil
	})

	status := StatusLive
	isReal := true
	if err != nil {
		objects, status, isReal = s.degrade(key, start, end, err)
	}

	snapshot := domain.BuildSnapshot(start, end, objects)
	s.metrics.FeedRequests.WithLabelValues(string(status)).Inc()
	s.metrics.SnapshotObjects.Observe(float64(len(snapshot.Objects)))
	s.ready.Store(true)
	return Result{Snapshot: snapshot, IsRealData: isReal, Status: status}, nil
}

// degrade picks the best available substitute after an upstream failure:
// stale cached data first, the static sample set last.
func (s *Service) degrade(key string, start, end domain.Date, cause error) ([]domain.NearEarthObject, Status, bool) {
	if stale, ok := s.store.GetStale(key); ok {
		s.logger.Warn("upstream fetch failed, serving stale cache",
			"start", start.String(), "end", end.String(),
			"rate_limited", errors.Is(cause, nasa.ErrRateLimited),
			"error", cause,
		)
		return stale, StatusStale, true
	}

	s.logger.Warn("upstream fetch failed with no cached data, serving fallback sample set",
		"start", start.String(), "end", end.String(),
		"error", cause,
	)
	return s.fallback, StatusFallback, false
}

// publish hands a freshly fetched batch to the optional publisher. Running
// inside the single-flight computation means each upstream fetch publishes
// exactly once, however many callers were waiting on it.
func (s *Service) publish(ctx context.Context, start, end domain.Date, objects []domain.NearEarthObject) {
	if s.publisher == nil {
		return
	}
	snapshot := domain.BuildSnapshot(start, end, objects)
	if err := s.publisher.PublishSnapshot(ctx, snapshot); err != nil {
		s.logger.Warn("snapshot publish failed", "error", err, "objects", len(snapshot.Objects))
	}
}

// CheckReadiness reports nil once the service has produced at least one
// snapshot.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no feed snapshot produced yet")
	}
	return nil
}

func cacheKey(start, end domain.Date) string {
	return "feed:" + start.String() + ":" + end.String()
}
