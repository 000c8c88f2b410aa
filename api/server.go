// Package api is the thin HTTP layer over the duty engine.
// It is only responsible for input ingestion, engine orchestration, and
// output serialization. The API never performs duty logic.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"tariff-engine/core/engine"
	"tariff-engine/core/invoice"
	"tariff-engine/core/pricing"
	"tariff-engine/internal/errors"
)

// Server is the API server
type Server struct {
	engine  *engine.Engine
	oracle  *pricing.Oracle
	mux     *http.ServeMux
	version string
}

// NewServer creates an API server over the engine and oracle
func NewServer(eng *engine.Engine, oracle *pricing.Oracle, version string) *Server {
	s := &Server{
		engine:  eng,
		oracle:  oracle,
		mux:     http.NewServeMux(),
		version: version,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /api/calculate", s.handleCalculate)
	s.mux.HandleFunc("POST /api/invoice", s.handleInvoice)

	// Price oracle endpoints
	s.mux.HandleFunc("GET /api/metals/prices", s.handlePrices)
	s.mux.HandleFunc("GET /api/metals/cache-status", s.handleCacheStatus)
	s.mux.HandleFunc("POST /api/metals/refresh-cache", s.handleRefreshCache)

	// Supporting endpoints
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/version", s.handleVersion)
}

// handleCalculate handles POST /api/calculate
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.engine.Calculate(r.Context(), req.Input())
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.writeJSON(w, CalculateResponse{
		Result:  result,
		Summary: invoice.BuildSummary(result, req.CastCountry, req.SmeltCountry),
	}, http.StatusOK)
}

// handleInvoice handles POST /api/invoice
func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.engine.Calculate(r.Context(), req.Input())
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	rowSet := invoice.BuildRows(result, invoice.RowOptions{
		ManufacturerPartNumber: req.ManufacturerPartNumber,
		CastCountry:            req.CastCountry,
		SmeltCountry:           req.SmeltCountry,
	})

	s.writeJSON(w, InvoiceResponse{
		Rows:        rowSet.Rows,
		TotalDuties: rowSet.FormattedTotal(),
	}, http.StatusOK)
}

// handlePrices handles GET /api/metals/prices
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"prices": s.oracle.AllPrices(r.Context()),
		"unit":   "USD/kg",
		"source": "LME (London Metal Exchange)",
	}, http.StatusOK)
}

// handleCacheStatus handles GET /api/metals/cache-status
func (s *Server) handleCacheStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status": s.oracle.CacheStatus(),
	}, http.StatusOK)
}

// handleRefreshCache handles POST /api/metals/refresh-cache
func (s *Server) handleRefreshCache(w http.ResponseWriter, r *http.Request) {
	s.oracle.ClearCache()
	s.writeJSON(w, map[string]interface{}{
		"message": "cache cleared and new prices fetched",
		"prices":  s.oracle.AllPrices(r.Context()),
	}, http.StatusOK)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /api/version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version": s.version,
		"engine":  "tariff-engine",
	}, http.StatusOK)
}

// writeEngineError maps domain error types to HTTP statuses
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	errType := errors.TypeOf(err)
	status := http.StatusInternalServerError
	switch errType {
	case errors.TypeInput:
		status = http.StatusBadRequest
	case errors.TypeRepository:
		status = http.StatusServiceUnavailable
	case errors.TypeNotFound:
		status = http.StatusNotFound
	}
	s.writeError(w, string(errType), err.Error(), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
