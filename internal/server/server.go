package server

import (
	"log/slog"
	"net/http"

	"district-dashboard/internal/handlers"
	"district-dashboard/internal/services"
)

type Server struct {
	dashboard     *services.Dashboard
	mux           *http.ServeMux
	logger        *slog.Logger
	apiHandlers   *handlers.APIHandlers
	sseHandlers   *handlers.SSEHandlers
	chartHandlers *handlers.ChartHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(dashboard *services.Dashboard, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		dashboard:     dashboard,
		mux:           http.NewServeMux(),
		logger:        logger,
		apiHandlers:   handlers.NewAPIHandlers(dashboard, logger),
		sseHandlers:   handlers.NewSSEHandlers(dashboard, logger),
		chartHandlers: handlers.NewChartHandlers(dashboard, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/catalog", s.apiHandlers.HandleCatalog)
	s.mux.HandleFunc("GET /api/overview", s.apiHandlers.HandleOverview)
	s.mux.HandleFunc("GET /api/areas/{code}", s.apiHandlers.HandleArea)
	s.mux.HandleFunc("GET /api/areas/{code}/defaults", s.apiHandlers.HandleDefaults)
	s.mux.HandleFunc("POST /api/predict", s.apiHandlers.HandlePredict)
	s.mux.HandleFunc("GET /api/predict/export", s.apiHandlers.HandleExport)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/overview", s.sseHandlers.HandleOverview)
	s.mux.HandleFunc("GET /sse/drilldown", s.sseHandlers.HandleDrilldown)
	s.mux.HandleFunc("POST /sse/predict", s.sseHandlers.HandlePredict)

	// Chart images
	s.mux.HandleFunc("GET /charts/areas/{code}/{chart}", s.chartHandlers.HandleAreaChart)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
