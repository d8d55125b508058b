package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"district-dashboard/internal/charts"
	"district-dashboard/internal/errors"
	"district-dashboard/internal/models"
	"district-dashboard/internal/observability"
	"district-dashboard/internal/services"
)

// Area chart names served under /charts/areas/{code}/.
const (
	ChartTrend     = "trend.png"
	ChartFloating  = "floating.png"
	ChartStores    = "stores.png"
	ChartTimeslots = "timeslots.png"
)

type areaChart func(w io.Writer, code string) error

// ChartHandlers serve the drill-down charts as PNG images.
type ChartHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
	charts    map[string]areaChart
}

func NewChartHandlers(dashboard *services.Dashboard, logger *slog.Logger) *ChartHandlers {
	h := &ChartHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
	h.charts = map[string]areaChart{
		ChartTrend:     h.trend,
		ChartFloating:  h.floating,
		ChartStores:    h.stores,
		ChartTimeslots: h.timeslots,
	}
	return h
}

// HandleAreaChart serves /charts/areas/{code}/{chart}.
func (h *ChartHandlers) HandleAreaChart(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("chart")
	render, ok := h.charts[name]
	if !ok {
		h.fail(w, r, errors.NotFound(fmt.Sprintf("unknown chart %q", name)))
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, r.PathValue("code")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writePNG(w, &buf)
}

func (h *ChartHandlers) trend(w io.Writer, code string) error {
	history, area, err := h.dashboard.History(code)
	if err != nil {
		return err
	}
	return rendered(charts.Trend(w, "Sales per store "+area.Code, "KRW", history, models.QuarterRecord.SalesPerStore))
}

func (h *ChartHandlers) floating(w io.Writer, code string) error {
	history, area, err := h.dashboard.History(code)
	if err != nil {
		return err
	}
	return rendered(charts.Trend(w, "Floating population "+area.Code, "People", history, func(r models.QuarterRecord) float64 {
		return r.FloatingPopulation
	}))
}

func (h *ChartHandlers) stores(w io.Writer, code string) error {
	history, area, err := h.dashboard.History(code)
	if err != nil {
		return err
	}
	return rendered(charts.Stores(w, "Stores "+area.Code, history))
}

func (h *ChartHandlers) timeslots(w io.Writer, code string) error {
	slots, area, err := h.dashboard.Timeslots(code)
	if err != nil {
		return err
	}
	values := make([]float64, len(models.Timeslots))
	for _, s := range slots {
		values[s.Timeslot.Index()] = s.FloatingPopulation
	}
	return rendered(charts.Timeslots(w, "Floating population by timeslot "+area.Code, "People", values))
}

func rendered(err error) error {
	if err != nil {
		return errors.InternalWrap(err, "failed to render chart")
	}
	return nil
}

func (h *ChartHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

func (h *ChartHandlers) writePNG(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("write chart", "error", err)
	}
}
