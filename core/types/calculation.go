// Package types - calculation inputs and results
package types

import (
	"github.com/shopspring/decimal"
)

// MaterialDeclaration is a caller-supplied (name, weight) pair describing
// the metal content of one unit of product
type MaterialDeclaration struct {
	// Name is the commodity name (e.g. "copper"); matched case-insensitively
	Name string `json:"name"`

	// WeightKg is the per-unit weight in kilograms
	WeightKg decimal.Decimal `json:"weight_kg"`
}

// PricedMaterial is a declaration enriched with a market price
type PricedMaterial struct {
	// Name is the normalized commodity name
	Name string `json:"name"`

	// WeightKg is the declared per-unit weight
	WeightKg decimal.Decimal `json:"weight_kg"`

	// UnitPrice is the market price per kg; nil when the commodity is
	// untracked or no price could be resolved
	UnitPrice *decimal.Decimal `json:"unit_price"`

	// Cost is UnitPrice * WeightKg, zero when unpriced
	Cost decimal.Decimal `json:"cost"`
}

// Priced reports whether a market price was resolved
func (m *PricedMaterial) Priced() bool {
	return m.UnitPrice != nil
}

// CalculationInput is everything the engine needs for one calculation
type CalculationInput struct {
	// ClassificationCode is the product tariff classification key
	ClassificationCode string `json:"classification_code"`

	// OriginCountry is the country-of-origin code
	OriginCountry string `json:"origin_country"`

	// UnitCost is the declared cost of a single unit
	UnitCost decimal.Decimal `json:"unit_cost"`

	// Materials declares the per-unit metal content
	Materials []MaterialDeclaration `json:"materials,omitempty"`

	// Quantity is the number of units (integer, >= 1)
	Quantity int `json:"quantity"`

	// LineNumber is the invoice line this calculation belongs to
	LineNumber int `json:"line_number,omitempty"`
}

// RuleLineOutcome is one evaluated rule line
type RuleLineOutcome struct {
	// ReferenceCode is the tariff-schedule citation of the line
	ReferenceCode string `json:"reference_code"`

	// RatePercent is the applied rate
	RatePercent decimal.Decimal `json:"rate_percent"`

	// Basis is the value basis the rate was applied to
	Basis ValueBasis `json:"basis"`

	// BasisValue is the monetary base the rate was applied to
	BasisValue decimal.Decimal `json:"basis_value"`

	// Amount is BasisValue * RatePercent / 100
	Amount decimal.Decimal `json:"amount"`

	// Description is the citation text carried from the rule line
	Description string `json:"description"`
}

// CalculationResult is the aggregate output of one calculation invocation.
// Monetary fields are per-unit until quantity normalization runs, after
// which they represent the full line-item total.
type CalculationResult struct {
	// Input echoes the original request
	Input CalculationInput `json:"input"`

	// FullValue is the declared value basis
	FullValue decimal.Decimal `json:"full_value"`

	// RemainderValue is FullValue minus metal content, floored at zero
	RemainderValue decimal.Decimal `json:"remainder_value"`

	// MetalContentValue is the aggregate priced-material cost (not clamped)
	MetalContentValue decimal.Decimal `json:"metal_content_value"`

	// Materials are the priced declarations in declaration order
	Materials []PricedMaterial `json:"materials,omitempty"`

	// TotalMaterialWeightKg is the summed declared weight
	TotalMaterialWeightKg decimal.Decimal `json:"total_material_weight_kg"`

	// Outcomes are the evaluated rule lines in repository order
	Outcomes []RuleLineOutcome `json:"outcomes"`

	// TotalTariffAmount is the sum of all outcome amounts
	TotalTariffAmount decimal.Decimal `json:"total_tariff_amount"`

	// EffectiveTariffRatePercent is TotalTariffAmount / FullValue * 100;
	// zero when FullValue is zero. Invariant under quantity scaling.
	EffectiveTariffRatePercent decimal.Decimal `json:"effective_tariff_rate_percent"`

	// FinalLandedCost is FullValue + TotalTariffAmount (scaled with quantity)
	FinalLandedCost decimal.Decimal `json:"final_landed_cost"`

	// Normalized reports whether quantity scaling has been applied
	Normalized bool `json:"normalized"`
}

// HasBasis reports whether any outcome was computed on the given basis
func (r *CalculationResult) HasBasis(basis ValueBasis) bool {
	for _, o := range r.Outcomes {
		if o.Basis == basis {
			return true
		}
	}
	return false
}
