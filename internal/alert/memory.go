package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cosmicwatch/neo-monitor-service/internal/domain"
)

// MemoryRuleRepository keeps alert rules in memory. Used when no database is
// configured and in tests.
type MemoryRuleRepository struct {
	mu     sync.Mutex
	rules  map[int64]domain.AlertRule
	nextID int64
}

func NewMemoryRuleRepository() *MemoryRuleRepository {
	return &MemoryRuleRepository{rules: make(map[int64]domain.AlertRule), nextID: 1}
}

// Add stores a rule and returns its assigned ID.
func (r *MemoryRuleRepository) Add(rule domain.AlertRule) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule.ID = r.nextID
	r.nextID++
	r.rules[rule.ID] = rule
	return rule.ID
}

func (r *MemoryRuleRepository) ListActive(ctx context.Context) ([]domain.AlertRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []domain.AlertRule
	for _, rule := range r.rules {
		if rule.IsActive {
			active = append(active, rule)
		}
	}
	return active, nil
}

func (r *MemoryRuleRepository) RecordTrigger(ctx context.Context, ruleID int64, when time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[ruleID]
	if !ok {
		return fmt.Errorf("rule %d not found", ruleID)
	}
	t := when
	rule.LastTriggeredAt = &t
	r.rules[ruleID] = rule
	return nil
}

// Get returns a rule by ID, for inspection in tests.
func (r *MemoryRuleRepository) Get(ruleID int64) (domain.AlertRule, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[ruleID]
	return rule, ok
}
