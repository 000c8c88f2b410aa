// Package config provides configuration management for the duty engine.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"tariff-engine/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains commodity price feed configuration
	Pricing PricingConfig `json:"pricing"`

	// Repository contains rule repository configuration
	Repository RepositoryConfig `json:"repository"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains price feed settings
type PricingConfig struct {
	// FeedBaseURL is the base URL of the metals price feed
	FeedBaseURL string `json:"feed_base_url"`

	// APIKeyEnv names the environment variable holding the feed API key
	APIKeyEnv string `json:"api_key_env"`

	// FeedTimeoutSeconds bounds a single feed call
	FeedTimeoutSeconds int `json:"feed_timeout_seconds"`

	// CacheTTLHours is the cache freshness window
	CacheTTLHours int `json:"cache_ttl_hours"`

	// TrackedCommodities is the fixed set of commodities ever queried
	TrackedCommodities []string `json:"tracked_commodities"`

	// FallbackPrices maps commodity name to a static USD/kg price used
	// when both the feed and the cache are unavailable
	FallbackPrices map[string]string `json:"fallback_prices"`
}

// RepositoryConfig contains rule store settings
type RepositoryConfig struct {
	// DatabasePath is the SQLite database file
	DatabasePath string `json:"database_path"`

	// RulesFile is an optional HCL rule definition file; when set, rules
	// are served from the file instead of the database
	RulesFile string `json:"rules_file,omitempty"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".tariff-engine", "rules.db")

	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			FeedBaseURL:        "https://api.metals.dev/v1",
			APIKeyEnv:          "METAL_PRICE_API_KEY",
			FeedTimeoutSeconds: 10,
			CacheTTLHours:      7 * 24,
			TrackedCommodities: []string{"copper", "aluminum"},
			FallbackPrices: map[string]string{
				"copper":   "9.15",
				"aluminum": "1.82",
			},
		},
		Repository: RepositoryConfig{
			DatabasePath: dbPath,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, falling back to defaults when the
// file does not exist
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
