package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the NEO
// monitoring core.
type Metrics struct {
	FeedRequests     *prometheus.CounterVec // labels: status={live,stale,fallback}
	UpstreamRequests *prometheus.CounterVec // labels: outcome={success,rate_limited,unavailable}
	UpstreamDuration prometheus.Histogram
	SnapshotObjects  prometheus.Histogram
	EntriesSkipped   prometheus.Counter

	// Alert evaluator metrics.
	AlertCycles        *prometheus.CounterVec // labels: outcome={completed,skipped,failed}
	AlertNotifications prometheus.Counter
	SchedulerRunning   prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neo_monitor",
			Name:      "feed_requests_total",
			Help:      "Feed snapshot requests by data status.",
		}, []string{"status"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neo_monitor",
			Name:      "upstream_requests_total",
			Help:      "Upstream NeoWs API requests by outcome.",
		}, []string{"outcome"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "neo_monitor",
			Name:      "upstream_request_duration_seconds",
			Help:      "NeoWs API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		SnapshotObjects: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "neo_monitor",
			Name:      "snapshot_objects",
			Help:      "Number of scored objects per feed snapshot.",
			Buckets:   []float64{0, 5, 10, 25, 50, 100, 250, 500},
		}),
		EntriesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "neo_monitor",
			Name:      "feed_entries_skipped_total",
			Help:      "Malformed upstream feed entries skipped during parsing.",
		}),
		AlertCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neo_monitor",
			Name:      "alert_cycles_total",
			Help:      "Alert evaluation cycles by outcome.",
		}, []string{"outcome"}),
		AlertNotifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "neo_monitor",
			Name:      "alert_notifications_total",
			Help:      "Notifications sent by the alert evaluator.",
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "neo_monitor",
			Name:      "alert_scheduler_running",
			Help:      "1 when the alert scheduler loop is active, 0 when stopped.",
		}),
	}

	prometheus.MustRegister(
		m.FeedRequests,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.SnapshotObjects,
		m.EntriesSkipped,
		m.AlertCycles,
		m.AlertNotifications,
		m.SchedulerRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FeedRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "neo_monitor", Name: "feed_requests_total"}, []string{"status"}),
		UpstreamRequests:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "neo_monitor", Name: "upstream_requests_total"}, []string{"outcome"}),
		UpstreamDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "neo_monitor", Name: "upstream_request_duration_seconds"}),
		SnapshotObjects:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "neo_monitor", Name: "snapshot_objects"}),
		EntriesSkipped:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "neo_monitor", Name: "feed_entries_skipped_total"}),
		AlertCycles:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "neo_monitor", Name: "alert_cycles_total"}, []string{"outcome"}),
		AlertNotifications: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "neo_monitor", Name: "alert_notifications_total"}),
		SchedulerRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "neo_monitor", Name: "alert_scheduler_running"}),
	}
}
