package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lfkv/metrics"
)

func TestStatsWithoutAuthWhenTokenHashEmpty(t *testing.T) {
	s := &Server{Collector: metrics.NewCollector()}
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestStatsRejectsMissingToken(t *testing.T) {
	hash, err := HashToken("secret")
	if err != nil {
		t.Fatalf("HashToken: %v", err)
	}
	s := &Server{Collector: metrics.NewCollector(), TokenHash: hash}
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestStatsAcceptsCorrectToken(t *testing.T) {
	hash, err := HashToken("secret")
	if err != nil {
		t.Fatalf("HashToken: %v", err)
	}
	s := &Server{Collector: metrics.NewCollector(), TokenHash: hash}
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHealthzReportsDrainingStatus(t *testing.T) {
	s := &Server{Collector: metrics.NewCollector(), Healthy: func() bool { return false }}
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
