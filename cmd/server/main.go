// Package main - Entry point for the tariff-engine API server
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"tariff-engine/adapters/metalsdev"
	"tariff-engine/adapters/rulefile"
	"tariff-engine/adapters/storage"
	"tariff-engine/api"
	"tariff-engine/core/engine"
	"tariff-engine/core/pricing"
	"tariff-engine/core/rules"
	"tariff-engine/core/valuation"
	"tariff-engine/internal/config"
	"tariff-engine/internal/logging"
)

const version = "0.1.0"

func main() {
	addr := flag.String("addr", "", "listen address (defaults to config server.addr)")
	cfgPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		config.Set(cfg)
	}
	cfg := config.Get()

	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatalf("initialize logging: %v", err)
	}

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = cfg.Server.Addr
	}

	oracle := buildOracle(cfg)
	repo, closeRepo, err := buildRepository(cfg)
	if err != nil {
		log.Fatalf("open rule repository: %v", err)
	}
	if closeRepo != nil {
		defer closeRepo()
	}

	eng := engine.New(repo, valuation.NewValuer(oracle))
	server := api.NewServer(eng, oracle, version)

	fmt.Printf("tariff-engine API server v%s\n", version)
	fmt.Printf("   Listening: http://localhost%s/api\n", listenAddr)

	if err := server.ListenAndServe(listenAddr); err != nil {
		log.Fatal(err)
	}
}

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
