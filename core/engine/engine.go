// Package engine evaluates duty rules against a declared product.
// It resolves value bases, accumulates per-line amounts, and scales the
// result by quantity.
package engine

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tariff-engine/core/rules"
	"tariff-engine/core/types"
	"tariff-engine/core/valuation"
	"tariff-engine/internal/errors"
	"tariff-engine/internal/logging"
)

// Engine runs duty calculations. Repository results are immutable for the
// duration of one calculation; each CalculationResult is owned by its
// invocation and never shared.
type Engine struct {
	repo   rules.Repository
	valuer *valuation.Valuer
	log    *zap.Logger
}

// New creates an Engine
func New(repo rules.Repository, valuer *valuation.Valuer) *Engine {
	return &Engine{repo: repo, valuer: valuer, log: logging.Logger}
}

// Calculate evaluates all applicable duty rules for the input and returns
// the quantity-scaled, auditable breakdown.
//
// Pipeline: validate, value materials, resolve bases, apply rule lines,
// normalize by quantity. An empty rule set is a valid zero-duty result.
func (e *Engine) Calculate(ctx context.Context, input types.CalculationInput) (*types.CalculationResult, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	lines, err := e.repo.FindActiveRuleLines(ctx, input.ClassificationCode, input.OriginCountry)
	if err != nil {
		return nil, errors.Repository("resolve duty rules", err)
	}

	materials, totalMaterialCost := e.valuer.ValueMaterials(ctx, input.Materials)

	bases := ResolveBases(input.UnitCost, totalMaterialCost)
	outcomes, total := ApplyRuleLines(lines, bases)

	totalWeight := decimal.Zero
	for _, m := range materials {
		if m.WeightKg.IsPositive() {
			totalWeight = totalWeight.Add(m.WeightKg)
		}
	}

	result := &types.CalculationResult{
		Input:                      input,
		FullValue:                  bases.Full,
		RemainderValue:             bases.Remainder,
		MetalContentValue:          bases.MetalContent,
		Materials:                  materials,
		TotalMaterialWeightKg:      totalWeight,
		Outcomes:                   outcomes,
		TotalTariffAmount:          total,
		EffectiveTariffRatePercent: EffectiveRate(total, bases.Full),
		FinalLandedCost:            bases.Full.Add(total),
	}

	Normalize(result, input.Quantity)

	e.log.Info("calculation complete",
		zap.String("classification_code", input.ClassificationCode),
		zap.String("origin", input.OriginCountry),
		zap.Int("rule_lines", len(outcomes)),
		zap.Int("quantity", input.Quantity),
		zap.String("total_tariff", result.TotalTariffAmount.String()))

	return result, nil
}

// validate rejects bad input before any repository or price-feed access
func validate(input types.CalculationInput) error {
	if strings.TrimSpace(input.ClassificationCode) == "" {
		return errors.Input("classification code is required")
	}
	if strings.TrimSpace(input.OriginCountry) == "" {
		return errors.Input("origin country is required")
	}
	if input.UnitCost.LessThanOrEqual(decimal.Zero) {
		return errors.Inputf("unit cost must be positive, got %s", input.UnitCost)
	}
	if input.Quantity < 1 {
		return errors.Inputf("quantity must be a positive integer, got %d", input.Quantity)
	}
	return nil
}
