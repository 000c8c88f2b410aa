// Package invoice renders calculation results into customs-invoice
// artifacts: a duty summary grouped by reference code, and a fixed-column
// invoice row set with basis-driven row splitting.
package invoice

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"tariff-engine/core/types"
)

// lineSeparator joins reference codes and descriptions within a row or group
const lineSeparator = "; "

// DutyGroup is the summed duty for one reference code
type DutyGroup struct {
	// ReferenceCode is the tariff-schedule citation shared by the group
	ReferenceCode string `json:"reference_code"`

	// Amount is the summed duty across all lines with this code
	Amount decimal.Decimal `json:"amount"`

	// Description joins the distinct descriptions of the grouped lines
	Description string `json:"description"`
}

// MaterialDetail is the per-commodity block of the summary, present for
// every declared material with positive weight
type MaterialDetail struct {
	// Commodity is the material name
	Commodity string `json:"commodity"`

	// WeightKg is the declared weight (scaled by quantity)
	WeightKg decimal.Decimal `json:"weight_kg"`

	// UnitPrice is the market price per kg; nil when unpriced
	UnitPrice *decimal.Decimal `json:"unit_price"`

	// CastCountry is the country of most recent cast
	CastCountry string `json:"cast_country"`

	// SmeltCountry is the country of most recent smelt
	SmeltCountry string `json:"smelt_country"`
}

// Summary is the grouped-by-reference-code duty summary, keyed for direct
// rendering on a customs invoice attachment
type Summary struct {
	// LineNumber is the invoice line this summary belongs to
	LineNumber int `json:"line_number"`

	// ClassificationCode is the classification code with separators stripped
	ClassificationCode string `json:"classification_code"`

	// OriginCountry is the origin country code
	OriginCountry string `json:"origin_country"`

	// Groups holds one entry per reference code, in first-appearance order
	Groups []DutyGroup `json:"groups"`

	// Materials lists declared commodities with positive weight
	Materials []MaterialDetail `json:"materials,omitempty"`

	// TotalDuty is the total tariff amount
	TotalDuty decimal.Decimal `json:"total_duty"`
}

// BuildSummary groups a calculation result by reference code. Amounts
// sharing a code are summed; distinct descriptions are joined. Cast and
// smelt countries default to the origin country when not supplied.
func BuildSummary(result *types.CalculationResult, castCountry, smeltCountry string) *Summary {
	summary := &Summary{
		LineNumber:         result.Input.LineNumber,
		ClassificationCode: StripSeparators(result.Input.ClassificationCode),
		OriginCountry:      result.Input.OriginCountry,
		Groups:             groupByReferenceCode(result.Outcomes),
		TotalDuty:          result.TotalTariffAmount,
	}

	cast := CountryCode(castCountry, result.Input.OriginCountry)
	smelt := CountryCode(smeltCountry, result.Input.OriginCountry)

	for _, m := range result.Materials {
		if !m.WeightKg.IsPositive() {
			continue
		}
		summary.Materials = append(summary.Materials, MaterialDetail{
			Commodity:    m.Name,
			WeightKg:     m.WeightKg,
			UnitPrice:    m.UnitPrice,
			CastCountry:  cast,
			SmeltCountry: smelt,
		})
	}

	return summary
}

// groupByReferenceCode merges outcomes sharing a reference code, preserving
// first-appearance order. The same grouping rule applies to invoice rows.
func groupByReferenceCode(outcomes []types.RuleLineOutcome) []DutyGroup {
	index := make(map[string]int, len(outcomes))
	var groups []DutyGroup

	for _, o := range outcomes {
		if i, ok := index[o.ReferenceCode]; ok {
			groups[i].Amount = groups[i].Amount.Add(o.Amount)
			if o.Description != "" && !strings.Contains(groups[i].Description, o.Description) {
				groups[i].Description += lineSeparator + o.Description
			}
			continue
		}
		index[o.ReferenceCode] = len(groups)
		groups = append(groups, DutyGroup{
			ReferenceCode: o.ReferenceCode,
			Amount:        o.Amount,
			Description:   o.Description,
		})
	}

	return groups
}

// StripSeparators removes separator characters from a classification code
// ("8517.62.0090" becomes "8517620090")
func StripSeparators(code string) string {
	return strings.NewReplacer(".", "", "-", "", " ", "").Replace(code)
}

var countrySuffix = regexp.MustCompile(`\(([^)]+)\)$`)

// CountryCode reduces "Taiwan (TW)" forms to the trailing code and falls
// back to the default when the value is empty
func CountryCode(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	if m := countrySuffix.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	return value
}
