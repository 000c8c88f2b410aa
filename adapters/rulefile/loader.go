// Package rulefile loads duty rule definitions from HCL files.
// Files are parsed at startup; basis names that do not parse are a
// configuration error, never a calculation-time failure.
package rulefile

import (
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"

	"tariff-engine/core/rules"
	"tariff-engine/core/types"
	"tariff-engine/internal/errors"
)

// ruleFile is the root HCL document
type ruleFile struct {
	Rules []ruleBlock `hcl:"rule,block"`
}

// ruleBlock is one rule definition
type ruleBlock struct {
	Number             int         `hcl:"number"`
	ClassificationCode string      `hcl:"classification_code"`
	Origin             string      `hcl:"origin"`
	Kind               string      `hcl:"kind,optional"`
	Active             *bool       `hcl:"active,optional"`
	Lines              []lineBlock `hcl:"line,block"`
}

// lineBlock is one rule line definition
type lineBlock struct {
	ReferenceCode string  `hcl:"reference_code"`
	RatePercent   float64 `hcl:"rate"`
	Basis         string  `hcl:"basis"`
	Description   string  `hcl:"description,optional"`
	Active        *bool   `hcl:"active,optional"`
}

// Load parses an HCL rule file into duty rules
func Load(path string) ([]types.DutyRule, error) {
	var file ruleFile
	if err := hclsimple.DecodeFile(path, nil, &file); err != nil {
		return nil, errors.Wrapf(errors.TypeConfig, err, "parse rule file %s", path)
	}

	ruleset := make([]types.DutyRule, 0, len(file.Rules))
	for _, block := range file.Rules {
		rule := types.DutyRule{
			RuleNumber:         block.Number,
			ClassificationCode: block.ClassificationCode,
			OriginCountry:      block.Origin,
			Kind:               block.Kind,
			IsActive:           boolOr(block.Active, true),
		}

		for _, line := range block.Lines {
			basis, err := types.ParseValueBasis(line.Basis)
			if err != nil {
				return nil, errors.Wrapf(errors.TypeConfig, err,
					"rule %d line %s", block.Number, line.ReferenceCode)
			}
			rule.Lines = append(rule.Lines, types.RuleLine{
				ReferenceCode: line.ReferenceCode,
				RatePercent:   decimal.NewFromFloat(line.RatePercent),
				Basis:         basis,
				Description:   line.Description,
				IsActive:      boolOr(line.Active, true),
			})
		}

		ruleset = append(ruleset, rule)
	}

	return ruleset, nil
}

// LoadRepository parses an HCL rule file into a ready in-memory repository
func LoadRepository(path string) (*rules.MemoryRepository, error) {
	ruleset, err := Load(path)
	if err != nil {
		return nil, err
	}
	return rules.NewMemoryRepository(ruleset), nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
