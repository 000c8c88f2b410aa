// Package invoice - fixed-column invoice rows
package invoice

import (
	"github.com/shopspring/decimal"

	"tariff-engine/core/types"
)

// Row is one fixed-column invoice row. Monetary fields are decimals;
// rendering to two decimal places happens at presentation time only.
type Row struct {
	// LineNumber is the invoice line number
	LineNumber int `json:"line_number"`

	// ClassificationCode is the classification code with separators stripped
	ClassificationCode string `json:"classification_code"`

	// ManufacturerPartNumber identifies the part, when supplied
	ManufacturerPartNumber string `json:"manufacturer_part_number,omitempty"`

	// OriginCountry is the origin country code
	OriginCountry string `json:"origin_country"`

	// ReferenceCodes joins the row's reference codes with "; "
	ReferenceCodes string `json:"reference_codes"`

	// Description joins the row's line descriptions with "; "
	Description string `json:"description"`

	// UnitPrice is the per-unit value this row declares
	UnitPrice decimal.Decimal `json:"unit_price"`

	// EnteredValue is the declared value for the full quantity
	EnteredValue decimal.Decimal `json:"entered_value"`

	// GrossWeightKg is the total material weight for the full quantity;
	// zero on non-metal rows
	GrossWeightKg decimal.Decimal `json:"gross_weight_kg"`

	// CastCountry is the country of most recent cast; metal rows only
	CastCountry string `json:"cast_country,omitempty"`

	// SmeltCountry is the country of most recent smelt; metal rows only
	SmeltCountry string `json:"smelt_country,omitempty"`

	// DutyOwed is the duty due for this row
	DutyOwed decimal.Decimal `json:"duty_owed"`
}

// RowSet is the invoice-row artifact
type RowSet struct {
	// Rows holds one or two rows depending on which bases are present
	Rows []Row `json:"rows"`

	// TotalDuties is the sum of DutyOwed across rows
	TotalDuties decimal.Decimal `json:"total_duties"`
}

// FormattedTotal renders the total to the two-decimal monetary convention
func (s *RowSet) FormattedTotal() string {
	return s.TotalDuties.StringFixed(2)
}

// RowOptions carries the presentation-only inputs of row building
type RowOptions struct {
	// ManufacturerPartNumber identifies the part on the invoice
	ManufacturerPartNumber string

	// CastCountry overrides the country of most recent cast
	CastCountry string

	// SmeltCountry overrides the country of most recent smelt
	SmeltCountry string
}

// BuildRows renders a normalized calculation result into invoice rows.
//
// Row layout is decided by which bases are present. When both
// RemainderValue and MetalContentValue lines exist the result splits into
// two rows: a remainder row carrying the remainder-basis lines (FullValue
// lines ride along with it) and a metal row carrying the metal-content
// lines with gross weight and cast/smelt codes. Otherwise a single row
// combines all lines, valued at the full declared value.
func BuildRows(result *types.CalculationResult, opts RowOptions) *RowSet {
	qty := decimal.NewFromInt(int64(result.Input.Quantity))
	base := Row{
		LineNumber:             result.Input.LineNumber,
		ClassificationCode:     StripSeparators(result.Input.ClassificationCode),
		ManufacturerPartNumber: opts.ManufacturerPartNumber,
		OriginCountry:          result.Input.OriginCountry,
	}

	split := result.HasBasis(types.BasisRemainderValue) && result.HasBasis(types.BasisMetalContentValue)

	var rows []Row
	if split {
		remainder := base
		fillLines(&remainder, result.Outcomes, func(b types.ValueBasis) bool {
			return b != types.BasisMetalContentValue
		})
		remainder.UnitPrice = perUnit(result.RemainderValue, qty)
		remainder.EnteredValue = result.RemainderValue

		metal := base
		fillLines(&metal, result.Outcomes, func(b types.ValueBasis) bool {
			return b == types.BasisMetalContentValue
		})
		metal.UnitPrice = perUnit(result.MetalContentValue, qty)
		metal.EnteredValue = result.MetalContentValue
		metal.GrossWeightKg = result.TotalMaterialWeightKg
		metal.CastCountry = CountryCode(opts.CastCountry, result.Input.OriginCountry)
		metal.SmeltCountry = CountryCode(opts.SmeltCountry, result.Input.OriginCountry)

		rows = []Row{remainder, metal}
	} else {
		single := base
		fillLines(&single, result.Outcomes, func(types.ValueBasis) bool { return true })
		single.UnitPrice = perUnit(result.FullValue, qty)
		single.EnteredValue = result.FullValue
		if result.HasBasis(types.BasisMetalContentValue) {
			single.GrossWeightKg = result.TotalMaterialWeightKg
			single.CastCountry = CountryCode(opts.CastCountry, result.Input.OriginCountry)
			single.SmeltCountry = CountryCode(opts.SmeltCountry, result.Input.OriginCountry)
		}
		rows = []Row{single}
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.DutyOwed)
	}

	return &RowSet{Rows: rows, TotalDuties: total}
}

// fillLines populates a row's codes, description, and duty from the
// outcomes selected by keep, merging lines that share a reference code
func fillLines(row *Row, outcomes []types.RuleLineOutcome, keep func(types.ValueBasis) bool) {
	var selected []types.RuleLineOutcome
	for _, o := range outcomes {
		if keep(o.Basis) {
			selected = append(selected, o)
		}
	}

	groups := groupByReferenceCode(selected)
	duty := decimal.Zero
	for i, g := range groups {
		if i > 0 {
			row.ReferenceCodes += lineSeparator
			row.Description += lineSeparator
		}
		row.ReferenceCodes += g.ReferenceCode
		row.Description += g.Description
		duty = duty.Add(g.Amount)
	}
	row.DutyOwed = duty
}

// perUnit divides a scaled value back to its per-unit footing
func perUnit(value, qty decimal.Decimal) decimal.Decimal {
	if qty.IsZero() {
		return value
	}
	return value.Div(qty)
}
