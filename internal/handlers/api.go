package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"district-dashboard/internal/errors"
	"district-dashboard/internal/export"
	"district-dashboard/internal/models"
	"district-dashboard/internal/observability"
	"district-dashboard/internal/services"
)

const (
	cacheMaxAge     = "public, max-age=300"
	maxRequestBytes = 1 << 20
)

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats())
}

func (h *APIHandlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.dashboard.Catalog(), map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

func (h *APIHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboard.Overview(models.Metric(r.URL.Query().Get("metric")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, view, map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

// HandleArea returns the drill-down of /api/areas/{code}. Optional year and
// quarter query parameters pick a period other than the reference one.
func (h *APIHandlers) HandleArea(w http.ResponseWriter, r *http.Request) {
	sel, err := selectionFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.dashboard.Drilldown(sel)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, view)
}

// HandleDefaults returns the prefilled prediction form of /api/areas/{code}/defaults.
func (h *APIHandlers) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	sel, err := selectionFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.dashboard.PredictForm(r.Context(), sel, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, view)
}

// HandlePredict runs the model on a JSON PredictionRequest body.
func (h *APIHandlers) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var req models.PredictionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.fail(w, r, errors.BadRequestWrap(err, "invalid prediction request body"))
		return
	}

	est, err := h.dashboard.Predict(r.Context(), req.Selection, req.Input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, est)
}

// HandleExport runs the model on the form values in the query string and
// returns the result as an Excel workbook.
func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	signals := make(map[string]any)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			signals[k] = v[0]
		}
	}
	sel, in := services.ParseFormSignals(signals)

	view, err := h.dashboard.PredictForm(r.Context(), sel, &in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WritePrediction(&buf, view.Area.Name, view.Estimate, in); err != nil {
		h.fail(w, r, errors.InternalWrap(err, "failed to write workbook"))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(view.Estimate)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("write workbook", "error", err)
	}
}

func selectionFromQuery(r *http.Request) (models.Selection, error) {
	q := r.URL.Query()
	sel := models.Selection{
		AreaCode: r.PathValue("code"),
		ZoneCode: q.Get("zone_code"),
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"year", &sel.Year}, {"quarter", &sel.Quarter}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return sel, errors.ValidationWrap(err, fmt.Sprintf("%s must be an integer", p.name))
		}
		*p.dst = n
	}
	return sel, nil
}
