package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"district-dashboard/internal/config"
	"district-dashboard/internal/middleware"
	"district-dashboard/internal/server"
	"district-dashboard/internal/services"
	"district-dashboard/internal/testutil"
)

func newTestDashboard(t *testing.T) *services.Dashboard {
	t.Helper()
	store := testutil.Store(t)
	return services.NewDashboard(store, testutil.Predictor(t, store), testutil.ReferencePeriod, testLogger())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	d := newTestDashboard(t)
	return server.NewServer(d, testLogger(), &server.TemplateHandlers{Dashboard: dashboardHandler(d)})
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/api/catalog", http.StatusOK, "application/json"},
		{"/api/overview", http.StatusOK, "application/json"},
		{"/api/areas/" + testutil.AreaGangnam, http.StatusOK, "application/json"},
		{"/api/areas/" + testutil.AreaGangnam + "/defaults", http.StatusOK, "application/json"},
		{"/api/areas/9999999", http.StatusNotFound, "application/json"},
		{"/charts/areas/" + testutil.AreaGangnam + "/trend.png", http.StatusOK, "image/png"},
		{"/charts/areas/" + testutil.AreaGangnam + "/timeslots.png", http.StatusOK, "image/png"},
		{"/charts/areas/" + testutil.AreaGangnam + "/floating.png", http.StatusOK, "image/png"},
		{"/charts/areas/" + testutil.AreaGangnam + "/stores.png", http.StatusOK, "image/png"},
		{"/charts/areas/" + testutil.AreaGangnam + "/pie.png", http.StatusNotFound, "application/json"},
		{"/nope", http.StatusNotFound, "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			// Validate JSON responses
			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

// Test Server-Sent Events routes
func TestServer_SSERoutes(t *testing.T) {
	srv := newTestServer(t)

	sseRoutes := []struct {
		method, path string
	}{
		{"GET", "/sse/overview"},
		{"GET", "/sse/drilldown"},
		{"POST", "/sse/predict"},
	}

	for _, route := range sseRoutes {
		t.Run(route.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(route.method, route.path, strings.NewReader("{}"))

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}

			// Check for SSE headers
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}

			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("cache-control = %q, want 'no-cache'", cc)
			}
		})
	}
}

// Test error handling for invalid methods
func TestServer_ErrorHandling(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/catalog", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"GET", "/api/predict", http.StatusMethodNotAllowed},
		{"GET", "/sse/predict", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

// Test dashboard template rendering
func TestDashboardTemplate(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	dashboardHandler(newTestDashboard(t))(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	expectedComponents := []string{
		"상권 분석 대시보드",
		"2023년3분기 기준",
		"역삼1동",
		"논현역",
		`id="overview"`,
		`id="drilldown"`,
		`id="predict"`,
	}

	for _, component := range expectedComponents {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain '%s'", component)
		}
	}
}

// Test the full middleware chain in front of the server
func TestMiddlewareChain(t *testing.T) {
	cfg := config.SecurityConfig{
		EnableCSRF:      true,
		EnableRateLimit: true,
		RateLimitRPS:    100,
		RateLimitBurst:  10,
		AllowedOrigins:  []string{"http://localhost:8501"},
	}
	logger := testLogger()
	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.RateLimit(middleware.NewRateLimiter(cfg), logger),
		middleware.CSRF(cfg, logger),
	)(newTestServer(t))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("response should carry a request ID")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	w = httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/sse/predict", strings.NewReader("{}"))
	r.Header.Set("Origin", "http://evil.example")
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("cross-site POST status = %d, want %d", w.Code, http.StatusForbidden)
	}
}
