// Package types holds the duty calculation domain model.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValueBasis identifies which monetary quantity a duty rate is applied to.
// It is a closed set so basis switches stay exhaustive.
type ValueBasis int

const (
	// BasisFullValue applies the rate to the full declared value
	BasisFullValue ValueBasis = iota

	// BasisRemainderValue applies the rate to the declared value net of
	// metal content, floored at zero
	BasisRemainderValue

	// BasisMetalContentValue applies the rate to the metal content value
	BasisMetalContentValue
)

// String returns the wire name of the basis
func (b ValueBasis) String() string {
	switch b {
	case BasisFullValue:
		return "FullValue"
	case BasisRemainderValue:
		return "RemainderValue"
	case BasisMetalContentValue:
		return "MetalContentValue"
	default:
		return "unknown"
	}
}

// ParseValueBasis maps a wire name to a ValueBasis.
// Unknown names are a data error surfaced at load time, never mid-calculation.
func ParseValueBasis(s string) (ValueBasis, error) {
	switch s {
	case "FullValue":
		return BasisFullValue, nil
	case "RemainderValue":
		return BasisRemainderValue, nil
	case "MetalContentValue":
		return BasisMetalContentValue, nil
	default:
		return 0, fmt.Errorf("unknown value basis %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (b ValueBasis) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (b *ValueBasis) UnmarshalText(text []byte) error {
	parsed, err := ParseValueBasis(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// RuleLine is a single additive duty contribution within a DutyRule
type RuleLine struct {
	// ReferenceCode is the tariff-schedule citation (e.g. "9903.01.25").
	// Opaque: used for grouping and display, never parsed.
	ReferenceCode string `json:"reference_code"`

	// RatePercent is the ad valorem rate (0-100; not clamped per line)
	RatePercent decimal.Decimal `json:"rate_percent"`

	// Basis selects the monetary base the rate applies to
	Basis ValueBasis `json:"basis"`

	// Description is the human-readable citation text
	Description string `json:"description"`

	// IsActive gates eligibility; inactive lines never apply
	IsActive bool `json:"is_active"`
}

// DutyRule binds a set of rule lines to a classification+origin pair.
// A rule exclusively owns its lines.
type DutyRule struct {
	// RuleNumber is a stable ordinal used for reproducible ordering
	RuleNumber int `json:"rule_number"`

	// ClassificationCode is the product tariff classification key
	ClassificationCode string `json:"classification_code"`

	// OriginCountry is the country-of-origin key (e.g. "TW")
	OriginCountry string `json:"origin_country"`

	// Kind is a descriptive label (e.g. "Simple", "MetalSplit")
	Kind string `json:"kind,omitempty"`

	// IsActive gates the whole rule
	IsActive bool `json:"is_active"`

	// Lines are the additive duty contributions in definition order
	Lines []RuleLine `json:"lines"`
}

// ActiveLines returns the rule's active lines in definition order.
// Returns nil when the rule itself is inactive.
func (r *DutyRule) ActiveLines() []RuleLine {
	if !r.IsActive {
		return nil
	}
	var lines []RuleLine
	for _, line := range r.Lines {
		if line.IsActive {
			lines = append(lines, line)
		}
	}
	return lines
}
