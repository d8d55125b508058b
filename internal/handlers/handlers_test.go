package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"district-dashboard/internal/services"
	"district-dashboard/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func createTestDashboard(t *testing.T) *services.Dashboard {
	t.Helper()
	store := testutil.Store(t)
	return services.NewDashboard(store, testutil.Predictor(t, store), testutil.ReferencePeriod, quietLogger())
}

// newMux registers the handlers on the same patterns the server uses, so
// path values resolve.
func newMux(t *testing.T) *http.ServeMux {
	t.Helper()
	d := createTestDashboard(t)
	api := NewAPIHandlers(d, quietLogger())
	sse := NewSSEHandlers(d, quietLogger())
	ch := NewChartHandlers(d, quietLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", api.HandleHealth)
	mux.HandleFunc("GET /admin/stats", api.HandleStats)
	mux.HandleFunc("GET /api/catalog", api.HandleCatalog)
	mux.HandleFunc("GET /api/overview", api.HandleOverview)
	mux.HandleFunc("GET /api/areas/{code}", api.HandleArea)
	mux.HandleFunc("GET /api/areas/{code}/defaults", api.HandleDefaults)
	mux.HandleFunc("POST /api/predict", api.HandlePredict)
	mux.HandleFunc("GET /api/predict/export", api.HandleExport)
	mux.HandleFunc("GET /sse/overview", sse.HandleOverview)
	mux.HandleFunc("GET /sse/drilldown", sse.HandleDrilldown)
	mux.HandleFunc("POST /sse/predict", sse.HandlePredict)
	mux.HandleFunc("GET /charts/areas/{code}/{chart}", ch.HandleAreaChart)
	return mux
}

func serve(t *testing.T, mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}
