// Package engine - quantity normalization
package engine

import (
	"github.com/shopspring/decimal"

	"tariff-engine/core/types"
)

// Normalize scales every monetary field of a per-unit result by the
// declared quantity. Runs strictly after basis resolution: bases are
// computed on a per-unit footing and scaled afterwards, never before.
// Rates and per-kg unit prices are not monetary totals and stay unscaled.
func Normalize(result *types.CalculationResult, quantity int) {
	if result.Normalized {
		return
	}

	qty := decimal.NewFromInt(int64(quantity))

	result.FullValue = result.FullValue.Mul(qty)
	result.RemainderValue = result.RemainderValue.Mul(qty)
	result.MetalContentValue = result.MetalContentValue.Mul(qty)
	result.TotalMaterialWeightKg = result.TotalMaterialWeightKg.Mul(qty)

	for i := range result.Materials {
		result.Materials[i].WeightKg = result.Materials[i].WeightKg.Mul(qty)
		result.Materials[i].Cost = result.Materials[i].Cost.Mul(qty)
	}

	for i := range result.Outcomes {
		result.Outcomes[i].BasisValue = result.Outcomes[i].BasisValue.Mul(qty)
		result.Outcomes[i].Amount = result.Outcomes[i].Amount.Mul(qty)
	}

	result.TotalTariffAmount = result.TotalTariffAmount.Mul(qty)
	result.FinalLandedCost = result.FinalLandedCost.Mul(qty)
	result.Normalized = true
}
