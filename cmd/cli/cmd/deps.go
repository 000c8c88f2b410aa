// Package cmd - shared component wiring
package cmd

import (
	"os"
	"time"

	"github.com/shopspring/decimal"

	"tariff-engine/adapters/metalsdev"
	"tariff-engine/adapters/rulefile"
	"tariff-engine/adapters/storage"
	"tariff-engine/core/engine"
	"tariff-engine/core/pricing"
	"tariff-engine/core/rules"
	"tariff-engine/core/valuation"
	"tariff-engine/internal/config"
)

// buildOracle wires the price oracle from configuration
func buildOracle(cfg *config.Config) *pricing.Oracle {
	feed := metalsdev.New(&metalsdev.Config{
		BaseURL: cfg.Pricing.FeedBaseURL,
		APIKey:  os.Getenv(cfg.Pricing.APIKeyEnv),
		Timeout: time.Duration(cfg.Pricing.FeedTimeoutSeconds) * time.Second,
	})

	fallback := make(map[string]decimal.Decimal, len(cfg.Pricing.FallbackPrices))
	for name, raw := range cfg.Pricing.FallbackPrices {
		if price, err := decimal.NewFromString(raw); err == nil {
			fallback[name] = price
		}
	}

	return pricing.NewOracle(
		feed,
		pricing.NewCache(),
		time.Duration(cfg.Pricing.CacheTTLHours)*time.Hour,
		cfg.Pricing.TrackedCommodities,
		pricing.WithFallback(fallback),
	)
}

// buildRepository wires the rule repository: an HCL rules file when
// configured, the SQLite store otherwise. The returned closer is nil for
// file-backed repositories.
func buildRepository(cfg *config.Config) (rules.Repository, func() error, error) {
	if cfg.Repository.RulesFile != "" {
		repo, err := rulefile.LoadRepository(cfg.Repository.RulesFile)
		if err != nil {
			return nil, nil, err
		}
		return repo, nil, nil
	}

	store, err := storage.Open(cfg.Repository.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// buildEngine wires the full calculation engine
func buildEngine(cfg *config.Config) (*engine.Engine, *pricing.Oracle, func() error, error) {
	oracle := buildOracle(cfg)
	repo, closer, err := buildRepository(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return engine.New(repo, valuation.NewValuer(oracle)), oracle, closer, nil
}
