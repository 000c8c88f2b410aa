// Package engine - value basis resolution
package engine

import (
	"github.com/shopspring/decimal"

	"tariff-engine/core/types"
)

// Bases holds the three per-unit value bases a rule line can tax.
// Stage one of the calculation: bases depend on material valuation and
// must be complete before any rule-line amount is final.
type Bases struct {
	// Full is the declared unit cost
	Full decimal.Decimal

	// Remainder is Full minus metal content, floored at zero
	Remainder decimal.Decimal

	// MetalContent is the total priced-material cost (never clamped)
	MetalContent decimal.Decimal
}

// ResolveBases computes the three bases from the declared unit cost and
// the total material cost
func ResolveBases(unitCost, totalMaterialCost decimal.Decimal) Bases {
	remainder := unitCost.Sub(totalMaterialCost)
	if remainder.IsNegative() {
		remainder = decimal.Zero
	}
	return Bases{
		Full:         unitCost,
		Remainder:    remainder,
		MetalContent: totalMaterialCost,
	}
}

// Value returns the monetary base for the given basis
func (b Bases) Value(basis types.ValueBasis) decimal.Decimal {
	switch basis {
	case types.BasisFullValue:
		return b.Full
	case types.BasisRemainderValue:
		return b.Remainder
	case types.BasisMetalContentValue:
		return b.MetalContent
	}
	return decimal.Zero
}

// ApplyRuleLines evaluates every rule line against its basis. Stage two:
// amounts are summed per line, never derived by summing rates first.
// Rate summation is incorrect across mixed bases.
func ApplyRuleLines(lines []types.RuleLine, bases Bases) ([]types.RuleLineOutcome, decimal.Decimal) {
	outcomes := make([]types.RuleLineOutcome, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		basisValue := bases.Value(line.Basis)
		amount := basisValue.Mul(line.RatePercent).Div(decimal.NewFromInt(100))
		outcomes = append(outcomes, types.RuleLineOutcome{
			ReferenceCode: line.ReferenceCode,
			RatePercent:   line.RatePercent,
			Basis:         line.Basis,
			BasisValue:    basisValue,
			Amount:        amount,
			Description:   line.Description,
		})
		total = total.Add(amount)
	}

	return outcomes, total
}

// EffectiveRate computes total / fullValue * 100, defined as zero when
// fullValue is zero
func EffectiveRate(total, fullValue decimal.Decimal) decimal.Decimal {
	if fullValue.IsZero() {
		return decimal.Zero
	}
	return total.Div(fullValue).Mul(decimal.NewFromInt(100))
}
