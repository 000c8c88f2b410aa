package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tariff-engine/core/engine"
	"tariff-engine/core/pricing"
	"tariff-engine/core/rules"
	"tariff-engine/core/types"
	"tariff-engine/core/valuation"
	"tariff-engine/internal/errors"
)

type staticFeed struct {
	prices map[string]decimal.Decimal
}

func (f *staticFeed) FetchPrice(ctx context.Context, commodity string) (decimal.Decimal, error) {
	price, ok := f.prices[commodity]
	if !ok {
		return decimal.Zero, errors.Newf(errors.TypeNetwork, "no price for %s", commodity)
	}
	return price, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo := rules.NewMemoryRepository([]types.DutyRule{
		{
			RuleNumber:         1,
			ClassificationCode: "8517710000",
			OriginCountry:      "TW",
			IsActive:           true,
			Lines: []types.RuleLine{
				{ReferenceCode: "9903.01.32", RatePercent: decimal.NewFromInt(15), Basis: types.BasisRemainderValue, IsActive: true},
				{ReferenceCode: "9903.85.08", RatePercent: decimal.NewFromInt(50), Basis: types.BasisMetalContentValue, IsActive: true},
			},
		},
	})

	feed := &staticFeed{prices: map[string]decimal.Decimal{"copper": decimal.NewFromInt(10)}}
	oracle := pricing.NewOracle(feed, pricing.NewCache(), time.Hour, []string{"copper"})
	eng := engine.New(repo, valuation.NewValuer(oracle))
	return NewServer(eng, oracle, "test")
}

func TestCalculateEndpoint(t *testing.T) {
	server := newTestServer(t)

	body := `{
		"classification_code": "8517710000",
		"origin_country": "TW",
		"unit_cost": "100",
		"materials": [{"name": "copper", "weight_kg": "2"}],
		"quantity": 1
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp CalculateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Decode response failed: %v", err)
	}
	if !resp.Result.TotalTariffAmount.Equal(decimal.NewFromInt(22)) {
		t.Errorf("Expected total tariff 22, got %s", resp.Result.TotalTariffAmount)
	}
	if len(resp.Summary.Groups) != 2 {
		t.Errorf("Expected 2 summary groups, got %d", len(resp.Summary.Groups))
	}
}

func TestCalculateEndpointDefaultsQuantity(t *testing.T) {
	server := newTestServer(t)

	body := `{"classification_code": "8517710000", "origin_country": "TW", "unit_cost": "100"}`
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 with omitted quantity, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCalculateEndpointBadInput(t *testing.T) {
	server := newTestServer(t)

	body := `{"classification_code": "", "origin_country": "TW", "unit_cost": "100", "quantity": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing code, got %d", rec.Code)
	}
}

func TestCalculateEndpointMalformedJSON(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestInvoiceEndpoint(t *testing.T) {
	server := newTestServer(t)

	body := `{
		"classification_code": "8517710000",
		"origin_country": "TW",
		"unit_cost": "100",
		"materials": [{"name": "copper", "weight_kg": "2"}],
		"quantity": 1,
		"manufacturer_part_number": "MPN-100",
		"cast_country": "Taiwan (TW)"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/invoice", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp InvoiceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Decode response failed: %v", err)
	}
	if len(resp.Rows) != 2 {
		t.Fatalf("Expected 2 invoice rows, got %d", len(resp.Rows))
	}
	if resp.TotalDuties != "22.00" {
		t.Errorf("Expected total duties 22.00, got %s", resp.TotalDuties)
	}
	if resp.Rows[1].CastCountry != "TW" {
		t.Errorf("Expected cast country TW on metal row, got %q", resp.Rows[1].CastCountry)
	}
}

func TestPricesEndpoint(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/metals/prices", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Prices map[string]decimal.Decimal `json:"prices"`
		Unit   string                     `json:"unit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Decode response failed: %v", err)
	}
	if !resp.Prices["copper"].Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected copper price 10, got %s", resp.Prices["copper"])
	}
	if resp.Unit != "USD/kg" {
		t.Errorf("Expected USD/kg unit, got %q", resp.Unit)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("Expected healthy status in body: %s", rec.Body.String())
	}
}
