// Package postgres persists alert rules in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cosmicwatch/neo-monitor-service/internal/domain"
)

// ErrRuleNotFound is returned when a trigger update matches no rule.
var ErrRuleNotFound = errors.New("alert rule not found")

// AlertRuleRepository provides alert rule queries against PostgreSQL. The
// API layer owns rule CRUD; the evaluator only reads active rules and
// records trigger times through this repository.
type AlertRuleRepository struct {
	db *pgxpool.Pool
}

// NewAlertRuleRepository creates a new AlertRuleRepository.
func NewAlertRuleRepository(db *pgxpool.Pool) *AlertRuleRepository {
	return &AlertRuleRepository{db: db}
}

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// ListActive returns all enabled alert rules.
func (r *AlertRuleRepository) ListActive(ctx context.Context) ([]domain.AlertRule, error) {
	q := `
		SELECT id, user_id, name, asteroid_id, threshold_distance_km, threshold_risk_score, is_active, last_triggered
		FROM alerts
		WHERE is_active
		ORDER BY id`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.AlertRule
	for rows.Next() {
		var rule domain.AlertRule
		if err := rows.Scan(
			&rule.ID, &rule.UserID, &rule.Name, &rule.AsteroidID,
			&rule.ThresholdDistanceKm, &rule.ThresholdRiskScore,
			&rule.IsActive, &rule.LastTriggeredAt,
		); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// RecordTrigger stamps the rule's last trigger time, starting its cooldown.
func (r *AlertRuleRepository) RecordTrigger(ctx context.Context, ruleID int64, when time.Time) error {
	q := `UPDATE alerts SET last_triggered = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, ruleID, when.UTC())
	if err != nil {
		return fmt.Errorf("record trigger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}
