package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"tariff-engine/core/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "rules.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testRule() types.DutyRule {
	return types.DutyRule{
		RuleNumber:         1,
		ClassificationCode: "8517710000",
		OriginCountry:      "TW",
		Kind:               "MetalSplit",
		IsActive:           true,
		Lines: []types.RuleLine{
			{
				ReferenceCode: "9903.01.32",
				RatePercent:   decimal.NewFromInt(15),
				Basis:         types.BasisRemainderValue,
				Description:   "Reciprocal tariff",
				IsActive:      true,
			},
			{
				ReferenceCode: "9903.85.08",
				RatePercent:   decimal.NewFromInt(50),
				Basis:         types.BasisMetalContentValue,
				Description:   "Copper content",
				IsActive:      true,
			},
		},
	}
}

func TestSaveAndFindRuleLines(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveRule(ctx, testRule()); err != nil {
		t.Fatalf("SaveRule failed: %v", err)
	}

	lines, err := store.FindActiveRuleLines(ctx, "8517710000", "TW")
	if err != nil {
		t.Fatalf("FindActiveRuleLines failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0].ReferenceCode != "9903.01.32" {
		t.Errorf("Expected 9903.01.32 first, got %s", lines[0].ReferenceCode)
	}
	if !lines[0].RatePercent.Equal(decimal.NewFromInt(15)) {
		t.Errorf("Expected rate 15, got %s", lines[0].RatePercent)
	}
	if lines[1].Basis != types.BasisMetalContentValue {
		t.Errorf("Expected MetalContentValue basis, got %s", lines[1].Basis)
	}
}

func TestFindRuleLinesNoMatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveRule(ctx, testRule()); err != nil {
		t.Fatalf("SaveRule failed: %v", err)
	}

	lines, err := store.FindActiveRuleLines(ctx, "8517710000", "CN")
	if err != nil {
		t.Fatalf("FindActiveRuleLines failed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Expected no lines for different origin, got %d", len(lines))
	}
}

func TestSaveRuleReplacesLines(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rule := testRule()
	if err := store.SaveRule(ctx, rule); err != nil {
		t.Fatalf("SaveRule failed: %v", err)
	}

	rule.Lines = rule.Lines[:1]
	rule.Lines[0].RatePercent = decimal.NewFromInt(20)
	if err := store.SaveRule(ctx, rule); err != nil {
		t.Fatalf("Second SaveRule failed: %v", err)
	}

	lines, err := store.FindActiveRuleLines(ctx, "8517710000", "TW")
	if err != nil {
		t.Fatalf("FindActiveRuleLines failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("Expected lines replaced, got %d", len(lines))
	}
	if !lines[0].RatePercent.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected updated rate 20, got %s", lines[0].RatePercent)
	}
}

func TestInactiveRuleExcluded(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rule := testRule()
	rule.IsActive = false
	if err := store.SaveRule(ctx, rule); err != nil {
		t.Fatalf("SaveRule failed: %v", err)
	}

	lines, err := store.FindActiveRuleLines(ctx, "8517710000", "TW")
	if err != nil {
		t.Fatalf("FindActiveRuleLines failed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Expected inactive rule excluded, got %d lines", len(lines))
	}
}

func TestSeedAndListRules(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	other := testRule()
	other.RuleNumber = 2
	other.OriginCountry = "CN"
	if err := store.Seed(ctx, []types.DutyRule{testRule(), other}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	ruleset, err := store.ListRules(ctx)
	if err != nil {
		t.Fatalf("ListRules failed: %v", err)
	}
	if len(ruleset) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(ruleset))
	}
	if ruleset[0].RuleNumber != 1 || ruleset[1].RuleNumber != 2 {
		t.Errorf("Expected rule-number order, got %d then %d", ruleset[0].RuleNumber, ruleset[1].RuleNumber)
	}
	if len(ruleset[0].Lines) != 2 {
		t.Errorf("Expected 2 lines on rule 1, got %d", len(ruleset[0].Lines))
	}
}
