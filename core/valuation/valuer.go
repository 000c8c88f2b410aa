// Package valuation prices declared metal content using the price oracle.
package valuation

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tariff-engine/core/pricing"
	"tariff-engine/core/types"
	"tariff-engine/internal/logging"
)

// Valuer produces per-material and aggregate material costs
type Valuer struct {
	oracle *pricing.Oracle
	log    *zap.Logger
}

// NewValuer creates a Valuer over the given oracle
func NewValuer(oracle *pricing.Oracle) *Valuer {
	return &Valuer{oracle: oracle, log: logging.Logger}
}

// ValueMaterials prices each declaration and returns the priced materials
// in declaration order together with the total material cost.
//
// A declaration never aborts the calculation: untracked commodities,
// zero or negative weights, and oracle failures all produce a zero-cost
// entry with a nil unit price, reported for transparency. Duplicate names
// collapse to the last declaration. Price lookups for distinct
// commodities run concurrently; they are read-only and independent.
func (v *Valuer) ValueMaterials(ctx context.Context, declarations []types.MaterialDeclaration) ([]types.PricedMaterial, decimal.Decimal) {
	declarations = dedupe(declarations)
	priced := make([]types.PricedMaterial, len(declarations))

	var wg sync.WaitGroup
	for i, decl := range declarations {
		wg.Add(1)
		go func(i int, decl types.MaterialDeclaration) {
			defer wg.Done()
			priced[i] = v.value(ctx, decl)
		}(i, decl)
	}
	wg.Wait()

	total := decimal.Zero
	for _, m := range priced {
		total = total.Add(m.Cost)
	}
	return priced, total
}

// value prices a single declaration
func (v *Valuer) value(ctx context.Context, decl types.MaterialDeclaration) types.PricedMaterial {
	material := types.PricedMaterial{
		Name:     strings.ToLower(decl.Name),
		WeightKg: decl.WeightKg,
		Cost:     decimal.Zero,
	}

	if !v.oracle.Tracks(material.Name) {
		v.log.Debug("material not in tracked commodity set, valued at zero",
			zap.String("material", material.Name))
		return material
	}

	if decl.WeightKg.LessThanOrEqual(decimal.Zero) {
		return material
	}

	price, err := v.oracle.Price(ctx, material.Name)
	if err != nil {
		// PRICING_ERROR is recovered here: the material stays unpriced and
		// contributes nothing to the metal-content basis.
		v.log.Warn("material left unpriced",
			zap.String("material", material.Name),
			zap.Error(err))
		return material
	}

	material.UnitPrice = &price
	material.Cost = price.Mul(decl.WeightKg)
	return material
}

// dedupe collapses duplicate names, keeping the last declaration for each
// while preserving first-appearance order
func dedupe(declarations []types.MaterialDeclaration) []types.MaterialDeclaration {
	index := make(map[string]int, len(declarations))
	var out []types.MaterialDeclaration
	for _, decl := range declarations {
		name := strings.ToLower(decl.Name)
		if i, ok := index[name]; ok {
			out[i] = decl
			continue
		}
		index[name] = len(out)
		out = append(out, decl)
	}
	return out
}
