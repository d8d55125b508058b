package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"district-dashboard/internal/charts"
	"district-dashboard/internal/models"
	"district-dashboard/internal/observability"
	"district-dashboard/internal/services"
	"district-dashboard/internal/ui/templates"
)

// navSignals are the page-level signals declared by the dashboard shell.
type navSignals struct {
	Metric string `json:"metric"`
	Zone   string `json:"zone"`
	Area   string `json:"area"`
}

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// patch renders c and sends it as an element patch. Render failures are
// logged and reported as false.
func (h *SSEHandlers) patch(ctx context.Context, sse *datastar.ServerSentEventGenerator, c templ.Component) bool {
	html, err := templates.String(ctx, c)
	if err != nil {
		observability.FromContext(ctx, h.logger).Error("render fragment", "error", err)
		return false
	}
	if err := sse.PatchElements(html); err != nil {
		observability.FromContext(ctx, h.logger).Warn("patch elements", "error", err)
		return false
	}
	return true
}

func (h *SSEHandlers) signals(ctx context.Context, sse *datastar.ServerSentEventGenerator, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		observability.FromContext(ctx, h.logger).Error("marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(data); err != nil {
		observability.FromContext(ctx, h.logger).Warn("patch signals", "error", err)
	}
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleOverview patches the ranking section for the metric signal.
func (h *SSEHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	var nav navSignals
	if err := datastar.ReadSignals(r, &nav); err != nil {
		h.logger.Debug("read signals", "error", err)
	}

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	view, err := h.dashboard.Render(ctx, services.OverviewPage{Metric: models.Metric(nav.Metric)})
	if err != nil {
		h.patch(ctx, sse, templates.Message(templates.IDOverview, err))
		flush(w)
		return
	}
	c, err := templates.View(view)
	if err != nil {
		h.patch(ctx, sse, templates.Message(templates.IDOverview, err))
		flush(w)
		return
	}
	h.patch(ctx, sse, c)
	flush(w)
}

// HandleDrilldown patches the detail section and the prefilled prediction
// form for the selected area, then resets the form signals to its defaults.
func (h *SSEHandlers) HandleDrilldown(w http.ResponseWriter, r *http.Request) {
	var nav navSignals
	if err := datastar.ReadSignals(r, &nav); err != nil {
		h.logger.Debug("read signals", "error", err)
	}

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()
	sel := models.Selection{ZoneCode: nav.Zone, AreaCode: nav.Area}

	drill, err := h.dashboard.Render(ctx, services.DrilldownPage{Selection: sel})
	if err != nil {
		h.patch(ctx, sse, templates.Message(templates.IDDrilldown, err))
		h.patch(ctx, sse, emptySection(templates.IDPredict))
		flush(w)
		return
	}
	h.patch(ctx, sse, templates.Drilldown(drill.(services.DrilldownView)))

	form, err := h.dashboard.Render(ctx, services.PredictPage{Selection: sel})
	if err != nil {
		h.patch(ctx, sse, templates.Message(templates.IDPredict, err))
		flush(w)
		return
	}
	pv := form.(services.PredictView)
	h.signals(ctx, sse, services.FormSignals(pv.Selection, pv.Defaults))
	h.patch(ctx, sse, templates.PredictForm(pv))
	flush(w)
}

// HandlePredict runs the model on the submitted form signals and patches the
// result under the form.
func (h *SSEHandlers) HandlePredict(w http.ResponseWriter, r *http.Request) {
	signals := make(map[string]any)
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Debug("read signals", "error", err)
	}

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	sel, in := services.ParseFormSignals(signals)
	view, err := h.dashboard.PredictForm(ctx, sel, &in)
	if err != nil {
		h.patch(ctx, sse, templates.Message(templates.IDPredictResult, err))
		flush(w)
		return
	}

	var png bytes.Buffer
	chart := ""
	if err := charts.Estimate(&png, view.Estimate); err != nil {
		observability.FromContext(ctx, h.logger).Warn("render estimate chart", "error", err)
	} else {
		chart = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png.Bytes())
	}

	h.patch(ctx, sse, templates.PredictResult(view.Sentence, view.Estimate, chart, ExportURL(view.Selection, in)))
	flush(w)
}

// ExportURL is the spreadsheet download link for a prediction.
func ExportURL(sel models.Selection, in models.UserInput) string {
	q := url.Values{}
	for k, v := range services.FormSignals(sel, in) {
		switch t := v.(type) {
		case string:
			q.Set(k, t)
		case int:
			q.Set(k, strconv.Itoa(t))
		case float64:
			q.Set(k, strconv.FormatFloat(t, 'f', -1, 64))
		}
	}
	return "/api/predict/export?" + q.Encode()
}

func emptySection(id string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<section id="`+id+`"></section>`)
		return err
	})
}
