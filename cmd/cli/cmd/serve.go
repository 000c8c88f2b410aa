package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tariff-engine/api"
	"tariff-engine/internal/config"
	"tariff-engine/internal/logging"

	"go.uber.org/zap"
)

var serveAddr string

// serveCmd starts the HTTP API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server exposing the duty engine.

Endpoints:
  POST /api/calculate             calculate duties for a product
  POST /api/invoice               build customs invoice rows
  GET  /api/metals/prices         current commodity prices
  GET  /api/metals/cache-status   price cache state
  POST /api/metals/refresh-cache  clear the cache and refetch
  GET  /api/health                health check`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to config server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	eng, oracle, closeRepo, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	if closeRepo != nil {
		defer closeRepo()
	}

	server := api.NewServer(eng, oracle, "0.1.0")
	logging.Logger.Info("starting API server", zap.String("addr", addr))
	fmt.Printf("tariff-engine API listening on %s\n", addr)
	return server.ListenAndServe(addr)
}
