package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookeo-tools/bookeo-mcp/pkg/bookeo"
)

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	// Creating a client ensures all metrics packages are imported and
	// their collectors registered.
	client, err := bookeo.New(bookeo.Config{
		Credentials: bookeo.Credentials{APIKey: "test-key", SecretKey: "test-secret"},
	})
	if err != nil {
		t.Fatalf("Failed to create Bookeo client: %v", err)
	}
	defer client.Close()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler := promhttp.Handler()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	bodyStr := string(body)

	if !strings.Contains(bodyStr, "# HELP") || !strings.Contains(bodyStr, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}

	// The rate limit wait counter is a plain counter and is always
	// exported, even before any requests are made.
	if !strings.Contains(bodyStr, "bookeo_rate_limit_waits_total") {
		t.Error("Expected metrics output to contain bookeo_rate_limit_waits_total")
	}
}
