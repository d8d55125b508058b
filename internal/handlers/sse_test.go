package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"district-dashboard/internal/services"
	"district-dashboard/internal/testutil"
)

func sseGet(t *testing.T, path string, signals map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(signals)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, path+"?datastar="+url.QueryEscape(string(data)), nil)
	return serve(t, newMux(t), req)
}

func assertStream(t *testing.T, w *httptest.ResponseRecorder, want ...string) {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("expected event stream, got %q", ct)
	}
	body := w.Body.String()
	for _, s := range want {
		if !strings.Contains(body, s) {
			t.Errorf("stream missing %q", s)
		}
	}
}

func TestSSEHandlers_Overview(t *testing.T) {
	w := sseGet(t, "/sse/overview", map[string]any{"metric": "store_count"})
	assertStream(t, w, `id="overview"`, "강남역", `class="active"`)
}

func TestSSEHandlers_OverviewInvalidMetric(t *testing.T) {
	w := sseGet(t, "/sse/overview", map[string]any{"metric": "rent"})
	assertStream(t, w, `id="overview"`, `class="error"`)
}

func TestSSEHandlers_Drilldown(t *testing.T) {
	w := sseGet(t, "/sse/drilldown", map[string]any{"zone": "", "area": testutil.AreaGangnam})
	assertStream(t, w,
		`id="drilldown"`,
		`id="predict"`,
		`"floating0"`,
		`"area":"`+testutil.AreaGangnam+`"`,
		"/charts/areas/3110001/trend.png",
	)
}

func TestSSEHandlers_DrilldownNoData(t *testing.T) {
	w := sseGet(t, "/sse/drilldown", map[string]any{"area": testutil.AreaHakdong})
	assertStream(t, w, `id="drilldown"`, "데이터가 없습니다")
	if strings.Contains(w.Body.String(), "data-bind-floating0") {
		t.Error("prediction form should not render without reference data")
	}
}

func TestSSEHandlers_Predict(t *testing.T) {
	body, err := json.Marshal(services.FormSignals(testutil.Selection(testutil.AreaGangnam), testutil.Input(50)))
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/sse/predict", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	w := serve(t, newMux(t), req)

	assertStream(t, w,
		`id="predict-result"`,
		"강남역 2024년 1분기 예상 매출은 12원입니다.",
		"data:image/png;base64,",
		"/api/predict/export?",
	)
}

func TestSSEHandlers_PredictMissingInput(t *testing.T) {
	signals := services.FormSignals(testutil.Selection(testutil.AreaGangnam), testutil.Input(50))
	delete(signals, services.KeyIncome)
	body, _ := json.Marshal(signals)

	req := httptest.NewRequest(http.MethodPost, "/sse/predict", strings.NewReader(string(body)))
	w := serve(t, newMux(t), req)
	assertStream(t, w, `id="predict-result"`, `class="error"`, "income")
}

func TestExportURL(t *testing.T) {
	u, err := url.Parse(ExportURL(testutil.Selection(testutil.AreaGangnam), testutil.Input(50)))
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if u.Path != "/api/predict/export" || q.Get("area") != testutil.AreaGangnam || q.Get("year") != "2024" || q.Get("floating2") != "8000" {
		t.Errorf("unexpected export url %s", u)
	}
}
