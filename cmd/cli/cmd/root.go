// Package cmd provides the CLI commands for tariff-engine.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tariff-engine/internal/config"
	"tariff-engine/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tariff-engine",
	Short: "Estimate import duties for declared products",
	Long: `tariff-engine estimates import duties owed on a product given its
classification code, country of origin, declared value, and metal content.

It resolves the applicable duty rules, prices metal content from live
commodity markets, and produces an auditable per-rule breakdown plus
customs-invoice-ready rows.

Examples:
  tariff-engine calculate --code 8517710000 --origin TW --cost 100 --material aluminum=2.5
  tariff-engine prices
  tariff-engine serve`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tariff-engine.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(pricesCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tariff-engine version 0.1.0")
	},
}
