// Package nasa talks to the NASA NeoWs (Near Earth Object Web Service) feed
// API and flattens its response into domain objects.
package nasa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cosmicwatch/neo-monitor-service/internal/domain"
	"github.com/cosmicwatch/neo-monitor-service/internal/observability"
)

// Failure classification for the degraded-mode path. Both classes resolve to
// the same stale-then-fallback policy in the feed service; the distinction
// feeds logs and metrics.
var (
	// ErrRateLimited means the upstream rejected the request with 429.
	ErrRateLimited = errors.New("neows: rate limited")

	// ErrUnavailable covers 5xx responses, network failures, timeouts, and
	// undecodable response bodies.
	ErrUnavailable = errors.New("neows: upstream unavailable")
)

// Client implements the NeoWs feed endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a NeoWs client. The timeout bounds the whole request; an
// exceeded deadline surfaces as ErrUnavailable.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchFeed retrieves and flattens close-approach records for the inclusive
// date range. Malformed entries are skipped individually; the batch survives.
func (c *Client) FetchFeed(ctx context.Context, start, end domain.Date) ([]domain.NearEarthObject, error) {
	params := url.Values{
		"start_date": {start.String()},
		"end_date":   {end.String()},
		"api_key":    {c.apiKey},
	}

	started := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/feed?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.metrics.UpstreamDuration.Observe(time.Since(started).Seconds())

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests:
		c.metrics.UpstreamRequests.WithLabelValues("rate_limited").Inc()
		return nil, fmt.Errorf("%w: status 429", ErrRateLimited)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.UpstreamRequests.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	objects, skipped, err := ParseFeed(body)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("unavailable").Inc()
		return nil, err
	}
	if skipped > 0 {
		c.metrics.EntriesSkipped.Add(float64(skipped))
		c.logger.Warn("skipped malformed feed entries", "skipped", skipped, "kept", len(objects))
	}

	c.metrics.UpstreamRequests.WithLabelValues("success").Inc()
	return objects, nil
}
