// Package alert evaluates user-defined alert rules against the scored feed
// and debounces notifications.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/cosmicwatch/neo-monitor-service/internal/domain"
	"github.com/cosmicwatch/neo-monitor-service/internal/feed"
	"github.com/cosmicwatch/neo-monitor-service/internal/observability"
)

// RuleRepository is the persistence collaborator for alert rules. The
// evaluator only lists active rules and records trigger times; rule CRUD
// belongs to the API layer.
type RuleRepository interface {
	ListActive(ctx context.Context) ([]domain.AlertRule, error)
	RecordTrigger(ctx context.Context, ruleID int64, when time.Time) error
}

// Notifier delivers a triggered alert to a user. Delivery mechanics (email,
// dashboard, queue) live behind this interface.
type Notifier interface {
	Notify(ctx context.Context, userID int64, subject, body string) error
}

// SnapshotSource provides the current scored feed. Implemented by
// feed.Service, whose cache keeps evaluation cycles from forcing extra
// upstream calls.
type SnapshotSource interface {
	GetFeed(ctx context.Context, start, end domain.Date) (feed.Result, error)
}

// Evaluator runs alert check cycles. A cycle fetches the scored snapshot for
// the lookahead window and fires each matching active rule at most once per
// cooldown period.
type Evaluator struct {
	feed      SnapshotSource
	rules     RuleRepository
	notifier  Notifier
	clock     clockwork.Clock
	cooldown  time.Duration
	lookahead time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
	running   atomic.Bool
}

// NewEvaluator creates an evaluator. Pass a nil clock to use real time.
func NewEvaluator(source SnapshotSource, rules RuleRepository, notifier Notifier, clock clockwork.Clock, cooldown, lookahead time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Evaluator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Evaluator{
		feed:      source,
		rules:     rules,
		notifier:  notifier,
		clock:     clock,
		cooldown:  cooldown,
		lookahead: lookahead,
		logger:    logger,
		metrics:   metrics,
	}
}

// RunCycle executes one evaluation cycle. Overlapping invocations are
// skipped, not queued: if a cycle is still executing when the next one is
// requested, the request returns immediately. Errors are returned for
// logging but a failed cycle leaves all rules untouched.
func (e *Evaluator) RunCycle(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		e.logger.Warn("alert cycle still running, skipping")
		e.metrics.AlertCycles.WithLabelValues("skipped").Inc()
		return nil
	}
	defer e.running.Store(false)

	if err := e.runCycle(ctx); err != nil {
		e.metrics.AlertCycles.WithLabelValues("failed").Inc()
		return err
	}
	e.metrics.AlertCycles.WithLabelValues("completed").Inc()
	return nil
}

func (e *Evaluator) runCycle(ctx context.Context) error {
	now := e.clock.Now()
	start := domain.NewDate(now)
	end := domain.NewDate(now.Add(e.lookahead))

	result, err := e.feed.GetFeed(ctx, start, end)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	rules, err := e.rules.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active rules: %w", err)
	}

	triggered := 0
	for _, rule := range rules {
		obj, ok := result.Snapshot.Find(rule.AsteroidID)
		if !ok {
			continue // no matching object this cycle; rule left untouched
		}
		if !ruleMatches(rule, obj) {
			continue
		}
		if !e.cooldownElapsed(rule, now) {
			continue
		}

		subject, body := formatNotification(rule, obj)
		if err := e.notifier.Notify(ctx, rule.UserID, subject, body); err != nil {
			// Do not record the trigger: an undelivered alert should retry
			// on the next cycle.
			e.logger.Error("notification failed", "rule_id", rule.ID, "user_id", rule.UserID, "error", err)
			continue
		}
		if err := e.rules.RecordTrigger(ctx, rule.ID, now); err != nil {
			e.logger.Error("record trigger failed", "rule_id", rule.ID, "error", err)
		}
		e.metrics.AlertNotifications.Inc()
		triggered++

		e.logger.Info("alert triggered",
			"rule_id", rule.ID,
			"asteroid_id", rule.AsteroidID,
			"asteroid_name", obj.Name,
			"score", obj.Risk.Score,
		)
	}

	e.logger.Info("alert cycle complete",
		"rules", len(rules),
		"objects", len(result.Snapshot.Objects),
		"triggered", triggered,
		"feed_status", result.Status,
	)
	return nil
}

// ruleMatches reports whether the object crosses either threshold. An unknown
// miss distance (+Inf) never satisfies the distance condition.
func ruleMatches(rule domain.AlertRule, obj domain.ScoredObject) bool {
	return obj.MissDistanceKm <= rule.ThresholdDistanceKm || obj.Risk.Score >= rule.ThresholdRiskScore
}

func (e *Evaluator) cooldownElapsed(rule domain.AlertRule, now time.Time) bool {
	return rule.LastTriggeredAt == nil || now.Sub(*rule.LastTriggeredAt) >= e.cooldown
}

func formatNotification(rule domain.AlertRule, obj domain.ScoredObject) (subject, body string) {
	subject = fmt.Sprintf("COSMIC WATCH ALERT: %s", obj.Name)

	distance := "unknown"
	if obj.HasMissDistance() {
		distance = fmt.Sprintf("%.0f km (%.2f LD)", obj.MissDistanceKm, obj.LunarDistance())
	}

	body = fmt.Sprintf(
		"Alert %q triggered for asteroid %s.\n\n"+
			"Close approach: %s\n"+
			"Estimated diameter: %.3f km\n"+
			"Miss distance: %s\n"+
			"Relative velocity: %.0f km/h\n"+
			"Risk score: %.1f/100 (%s)\n\n"+
			"Thresholds: distance <= %.0f km OR risk >= %.1f",
		rule.Name, obj.Name,
		obj.CloseApproachDate.Format("2006-01-02"),
		obj.DiameterKm,
		distance,
		obj.VelocityKph,
		obj.Risk.Score, obj.Risk.ThreatLevel,
		rule.ThresholdDistanceKm, rule.ThresholdRiskScore,
	)
	return subject, body
}
