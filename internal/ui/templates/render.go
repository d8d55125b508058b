// Package templates holds the dashboard's HTML fragments. Fragments carry
// stable element IDs so datastar can morph them in place.
package templates

import (
	"context"
	"encoding/json"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"district-dashboard/internal/format"
	"district-dashboard/internal/models"
	"district-dashboard/internal/services"
)

// Fragment element IDs.
const (
	IDOverview      = "overview"
	IDDrilldown     = "drilldown"
	IDPredict       = "predict"
	IDPredictResult = "predict-result"
)

var funcs = template.FuncMap{
	"number":  format.Number,
	"won":     format.Won,
	"delta":   format.Delta,
	"percent": format.Percent,
	"change":  format.Change,
	"metric":  metricValue,
	"float":   formatFloat,
	"inc":     func(i int) int { return i + 1 },
	"json":    toJSON,
	"chart":   chartURL,

	"breakdownRows": func(title string, rows []services.Breakdown) breakdownTable {
		return breakdownTable{Title: title, Rows: rows}
	},
	"shareRows": func(title string, rows []services.Share) shareTable {
		return shareTable{Title: title, Rows: rows}
	},
}

var fragments = template.Must(template.New("fragments").Funcs(funcs).Parse(
	layoutHTML + overviewHTML + drilldownHTML + predictHTML + messagesHTML,
))

// fragment executes the named fragment with data.
func fragment(name string, data any) templ.Component {
	return templ.FromGoHTML(fragments.Lookup(name), data)
}

// String renders c into a string, for streaming as an SSE fragment.
func String(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func metricValue(m models.Metric, v float64) string {
	if m == models.MetricSalesPerStore {
		return format.Won(v)
	}
	return format.Number(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func chartURL(area, name string) string {
	return "/charts/areas/" + url.PathEscape(area) + "/" + name
}
