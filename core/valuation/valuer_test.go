package valuation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tariff-engine/core/pricing"
	"tariff-engine/core/types"
	"tariff-engine/internal/errors"
)

type tableFeed struct {
	prices map[string]decimal.Decimal
}

func (f *tableFeed) FetchPrice(ctx context.Context, commodity string) (decimal.Decimal, error) {
	price, ok := f.prices[commodity]
	if !ok {
		return decimal.Zero, errors.Newf(errors.TypeNetwork, "no price for %s", commodity)
	}
	return price, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestValuer(prices map[string]decimal.Decimal) *Valuer {
	oracle := pricing.NewOracle(&tableFeed{prices: prices}, pricing.NewCache(), time.Hour,
		[]string{"copper", "aluminum"})
	return NewValuer(oracle)
}

func TestValueMaterials(t *testing.T) {
	valuer := newTestValuer(map[string]decimal.Decimal{
		"copper":   dec("10"),
		"aluminum": dec("2"),
	})

	priced, total := valuer.ValueMaterials(context.Background(), []types.MaterialDeclaration{
		{Name: "Copper", WeightKg: dec("2")},
		{Name: "aluminum", WeightKg: dec("0.5")},
	})

	if len(priced) != 2 {
		t.Fatalf("Expected 2 priced materials, got %d", len(priced))
	}
	if priced[0].Name != "copper" {
		t.Errorf("Expected normalized name copper, got %s", priced[0].Name)
	}
	if !priced[0].Cost.Equal(dec("20")) {
		t.Errorf("Expected copper cost 20, got %s", priced[0].Cost)
	}
	if !priced[1].Cost.Equal(dec("1")) {
		t.Errorf("Expected aluminum cost 1, got %s", priced[1].Cost)
	}
	if !total.Equal(dec("21")) {
		t.Errorf("Expected total 21, got %s", total)
	}
}

func TestValueMaterialsUntrackedIsZeroCost(t *testing.T) {
	valuer := newTestValuer(map[string]decimal.Decimal{"copper": dec("10")})

	priced, total := valuer.ValueMaterials(context.Background(), []types.MaterialDeclaration{
		{Name: "unobtainium", WeightKg: dec("3")},
	})

	if len(priced) != 1 {
		t.Fatalf("Expected untracked material reported, got %d entries", len(priced))
	}
	if priced[0].Priced() {
		t.Error("Expected nil unit price for untracked material")
	}
	if !priced[0].Cost.IsZero() || !total.IsZero() {
		t.Errorf("Expected zero cost, got %s (total %s)", priced[0].Cost, total)
	}
	// The declared weight is still carried for transparency
	if !priced[0].WeightKg.Equal(dec("3")) {
		t.Errorf("Expected weight 3 preserved, got %s", priced[0].WeightKg)
	}
}

func TestValueMaterialsPriceFailureIsZeroCost(t *testing.T) {
	valuer := newTestValuer(nil)

	priced, total := valuer.ValueMaterials(context.Background(), []types.MaterialDeclaration{
		{Name: "copper", WeightKg: dec("2")},
	})

	if priced[0].Priced() {
		t.Error("Expected nil unit price when the oracle cannot resolve")
	}
	if !total.IsZero() {
		t.Errorf("Expected zero total, got %s", total)
	}
}

func TestValueMaterialsNonPositiveWeight(t *testing.T) {
	valuer := newTestValuer(map[string]decimal.Decimal{"copper": dec("10")})

	priced, total := valuer.ValueMaterials(context.Background(), []types.MaterialDeclaration{
		{Name: "copper", WeightKg: dec("-1")},
	})

	if priced[0].Priced() {
		t.Error("Expected no price lookup for non-positive weight")
	}
	if !total.IsZero() {
		t.Errorf("Expected zero total, got %s", total)
	}
}

func TestValueMaterialsDuplicatesCollapseToLast(t *testing.T) {
	valuer := newTestValuer(map[string]decimal.Decimal{"copper": dec("10")})

	priced, total := valuer.ValueMaterials(context.Background(), []types.MaterialDeclaration{
		{Name: "copper", WeightKg: dec("1")},
		{Name: "Copper", WeightKg: dec("4")},
	})

	if len(priced) != 1 {
		t.Fatalf("Expected duplicates collapsed to one entry, got %d", len(priced))
	}
	if !priced[0].WeightKg.Equal(dec("4")) {
		t.Errorf("Expected last declaration to win, got weight %s", priced[0].WeightKg)
	}
	if !total.Equal(dec("40")) {
		t.Errorf("Expected total 40, got %s", total)
	}
}

func TestValueMaterialsEmpty(t *testing.T) {
	valuer := newTestValuer(nil)

	priced, total := valuer.ValueMaterials(context.Background(), nil)
	if len(priced) != 0 {
		t.Errorf("Expected no priced materials, got %d", len(priced))
	}
	if !total.IsZero() {
		t.Errorf("Expected zero total, got %s", total)
	}
}
