package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValueBasisRoundTrip(t *testing.T) {
	for _, basis := range []ValueBasis{BasisFullValue, BasisRemainderValue, BasisMetalContentValue} {
		parsed, err := ParseValueBasis(basis.String())
		if err != nil {
			t.Fatalf("ParseValueBasis(%s) failed: %v", basis, err)
		}
		if parsed != basis {
			t.Errorf("Round trip changed %s to %s", basis, parsed)
		}
	}
}

func TestParseValueBasisUnknown(t *testing.T) {
	if _, err := ParseValueBasis("HalfValue"); err == nil {
		t.Error("Expected error for unknown basis name")
	}
}

func TestActiveLines(t *testing.T) {
	rule := DutyRule{
		IsActive: true,
		Lines: []RuleLine{
			{ReferenceCode: "A", RatePercent: decimal.NewFromInt(10), IsActive: true},
			{ReferenceCode: "B", RatePercent: decimal.NewFromInt(5), IsActive: false},
			{ReferenceCode: "C", RatePercent: decimal.NewFromInt(1), IsActive: true},
		},
	}

	active := rule.ActiveLines()
	if len(active) != 2 {
		t.Fatalf("Expected 2 active lines, got %d", len(active))
	}
	if active[0].ReferenceCode != "A" || active[1].ReferenceCode != "C" {
		t.Errorf("Expected definition order A, C; got %s, %s", active[0].ReferenceCode, active[1].ReferenceCode)
	}
}

func TestActiveLinesInactiveRule(t *testing.T) {
	rule := DutyRule{
		IsActive: false,
		Lines: []RuleLine{
			{ReferenceCode: "A", RatePercent: decimal.NewFromInt(10), IsActive: true},
		},
	}
	if lines := rule.ActiveLines(); lines != nil {
		t.Errorf("Expected nil for inactive rule, got %d lines", len(lines))
	}
}

func TestHasBasis(t *testing.T) {
	result := CalculationResult{
		Outcomes: []RuleLineOutcome{
			{Basis: BasisRemainderValue},
			{Basis: BasisMetalContentValue},
		},
	}
	if !result.HasBasis(BasisRemainderValue) || !result.HasBasis(BasisMetalContentValue) {
		t.Error("Expected both present bases reported")
	}
	if result.HasBasis(BasisFullValue) {
		t.Error("Did not expect FullValue basis")
	}
}
