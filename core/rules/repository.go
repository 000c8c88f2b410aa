// Package rules defines the duty rule repository contract.
// Rules are created and edited by administrative tooling; the engine only
// reads them.
package rules

import (
	"context"

	"tariff-engine/core/types"
)

// Repository is a queryable store of classification+origin keyed duty rules.
// All matching active lines apply simultaneously; there is no
// most-specific-rule-wins semantics. Order must be stable (definition
// order) so summaries are reproducible.
type Repository interface {
	// FindActiveRuleLines returns the active rule lines for the pair, in
	// definition order. An empty result is valid, not an error.
	FindActiveRuleLines(ctx context.Context, classificationCode, originCountry string) ([]types.RuleLine, error)
}
