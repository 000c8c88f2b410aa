// Package api - request and response types
package api

import (
	"github.com/shopspring/decimal"

	"tariff-engine/core/invoice"
	"tariff-engine/core/types"
)

// MaterialRequest is one declared material
type MaterialRequest struct {
	// Name is the commodity name
	Name string `json:"name"`

	// WeightKg is the per-unit weight in kilograms
	WeightKg decimal.Decimal `json:"weight_kg"`
}

// CalculateRequest is the POST /api/calculate payload
type CalculateRequest struct {
	ClassificationCode string            `json:"classification_code"`
	OriginCountry      string            `json:"origin_country"`
	UnitCost           decimal.Decimal   `json:"unit_cost"`
	Materials          []MaterialRequest `json:"materials,omitempty"`
	Quantity           int               `json:"quantity"`
	LineNumber         int               `json:"line_number,omitempty"`
	CastCountry        string            `json:"cast_country,omitempty"`
	SmeltCountry       string            `json:"smelt_country,omitempty"`
}

// Input maps the request to an engine input. A missing quantity means a
// single unit.
func (r *CalculateRequest) Input() types.CalculationInput {
	quantity := r.Quantity
	if quantity == 0 {
		quantity = 1
	}
	input := types.CalculationInput{
		ClassificationCode: r.ClassificationCode,
		OriginCountry:      r.OriginCountry,
		UnitCost:           r.UnitCost,
		Quantity:           quantity,
		LineNumber:         r.LineNumber,
	}
	for _, m := range r.Materials {
		input.Materials = append(input.Materials, types.MaterialDeclaration{
			Name:     m.Name,
			WeightKg: m.WeightKg,
		})
	}
	return input
}

// CalculateResponse is the POST /api/calculate payload
type CalculateResponse struct {
	// Result is the full auditable breakdown
	Result *types.CalculationResult `json:"result"`

	// Summary is the grouped-by-reference-code duty summary
	Summary *invoice.Summary `json:"summary"`
}

// InvoiceRequest is the POST /api/invoice payload
type InvoiceRequest struct {
	CalculateRequest

	// ManufacturerPartNumber identifies the part on the invoice
	ManufacturerPartNumber string `json:"manufacturer_part_number,omitempty"`
}

// InvoiceResponse is the POST /api/invoice payload
type InvoiceResponse struct {
	// Rows are the fixed-column invoice rows
	Rows []invoice.Row `json:"invoice_rows"`

	// TotalDuties is the summed duty owed, rendered to two decimals
	TotalDuties string `json:"total_duties"`
}
