package engine

import (
	"testing"

	"tariff-engine/core/types"
)

func sampleResult() *types.CalculationResult {
	price := dec("10")
	return &types.CalculationResult{
		FullValue:             dec("100"),
		RemainderValue:        dec("80"),
		MetalContentValue:     dec("20"),
		TotalMaterialWeightKg: dec("2"),
		Materials: []types.PricedMaterial{
			{Name: "copper", WeightKg: dec("2"), UnitPrice: &price, Cost: dec("20")},
		},
		Outcomes: []types.RuleLineOutcome{
			{ReferenceCode: "A", RatePercent: dec("15"), Basis: types.BasisRemainderValue, BasisValue: dec("80"), Amount: dec("12")},
		},
		TotalTariffAmount:          dec("12"),
		EffectiveTariffRatePercent: dec("12"),
		FinalLandedCost:            dec("112"),
	}
}

func TestNormalizeScalesMonetaryFields(t *testing.T) {
	result := sampleResult()
	Normalize(result, 3)

	if !result.FullValue.Equal(dec("300")) {
		t.Errorf("Expected full value 300, got %s", result.FullValue)
	}
	if !result.RemainderValue.Equal(dec("240")) {
		t.Errorf("Expected remainder 240, got %s", result.RemainderValue)
	}
	if !result.MetalContentValue.Equal(dec("60")) {
		t.Errorf("Expected metal content 60, got %s", result.MetalContentValue)
	}
	if !result.TotalMaterialWeightKg.Equal(dec("6")) {
		t.Errorf("Expected weight 6, got %s", result.TotalMaterialWeightKg)
	}
	if !result.Materials[0].Cost.Equal(dec("60")) {
		t.Errorf("Expected material cost 60, got %s", result.Materials[0].Cost)
	}
	if !result.Outcomes[0].Amount.Equal(dec("36")) {
		t.Errorf("Expected outcome amount 36, got %s", result.Outcomes[0].Amount)
	}
	if !result.TotalTariffAmount.Equal(dec("36")) {
		t.Errorf("Expected tariff 36, got %s", result.TotalTariffAmount)
	}
	if !result.FinalLandedCost.Equal(dec("336")) {
		t.Errorf("Expected landed cost 336, got %s", result.FinalLandedCost)
	}
	if !result.Normalized {
		t.Error("Expected result to be marked normalized")
	}
}

func TestNormalizeLeavesRatesAndUnitPrices(t *testing.T) {
	result := sampleResult()
	Normalize(result, 3)

	if !result.EffectiveTariffRatePercent.Equal(dec("12")) {
		t.Errorf("Expected effective rate unchanged at 12%%, got %s", result.EffectiveTariffRatePercent)
	}
	if !result.Outcomes[0].RatePercent.Equal(dec("15")) {
		t.Errorf("Expected rate unchanged at 15%%, got %s", result.Outcomes[0].RatePercent)
	}
	if !result.Materials[0].UnitPrice.Equal(dec("10")) {
		t.Errorf("Expected unit price unchanged at 10, got %s", result.Materials[0].UnitPrice)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	result := sampleResult()
	Normalize(result, 3)
	Normalize(result, 3)

	if !result.FullValue.Equal(dec("300")) {
		t.Errorf("Second Normalize must be a no-op, got full value %s", result.FullValue)
	}
}

func TestNormalizeQuantityOne(t *testing.T) {
	result := sampleResult()
	Normalize(result, 1)

	if !result.FullValue.Equal(dec("100")) {
		t.Errorf("Expected full value unchanged at 100, got %s", result.FullValue)
	}
	if !result.Normalized {
		t.Error("Expected result to be marked normalized")
	}
}
