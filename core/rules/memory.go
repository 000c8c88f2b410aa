// Package rules - in-memory repository
package rules

import (
	"context"
	"sort"
	"sync"

	"tariff-engine/core/types"
)

// MemoryRepository is a deterministic in-memory Repository. It backs
// file-driven deployments (rules loaded from an HCL file) and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	rules []types.DutyRule
}

// NewMemoryRepository creates a repository holding the given rules,
// ordered by rule number
func NewMemoryRepository(ruleset []types.DutyRule) *MemoryRepository {
	rules := make([]types.DutyRule, len(ruleset))
	copy(rules, ruleset)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].RuleNumber < rules[j].RuleNumber
	})
	return &MemoryRepository{rules: rules}
}

// FindActiveRuleLines implements Repository
func (r *MemoryRepository) FindActiveRuleLines(ctx context.Context, classificationCode, originCountry string) ([]types.RuleLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var lines []types.RuleLine
	for i := range r.rules {
		rule := &r.rules[i]
		if rule.ClassificationCode != classificationCode || rule.OriginCountry != originCountry {
			continue
		}
		lines = append(lines, rule.ActiveLines()...)
	}
	return lines, nil
}

// Rules returns a copy of all rules in rule-number order
func (r *MemoryRepository) Rules() []types.DutyRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.DutyRule, len(r.rules))
	copy(out, r.rules)
	return out
}
