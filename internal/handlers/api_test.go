package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"district-dashboard/internal/export"
	"district-dashboard/internal/models"
	"district-dashboard/internal/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %q", ct)
	}
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	return env
}

func TestAPIHandlers_Health(t *testing.T) {
	w := serve(t, newMux(t), httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var health map[string]string
	if err := json.Unmarshal(decode(t, w).Data, &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "healthy" {
		t.Errorf("expected status healthy, got %q", health["status"])
	}
}

func TestAPIHandlers_Stats(t *testing.T) {
	w := serve(t, newMux(t), httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	var stats map[string]any
	if err := json.Unmarshal(decode(t, w).Data, &stats); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"quarter_records", "reference_period", "model_version", "uptime"} {
		if _, ok := stats[key]; !ok {
			t.Errorf("stats missing %q", key)
		}
	}
	if stats["reference_period"] != "2023Q3" {
		t.Errorf("reference_period = %v", stats["reference_period"])
	}
}

func TestAPIHandlers_Catalog(t *testing.T) {
	w := serve(t, newMux(t), httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	if cc := w.Header().Get("Cache-Control"); cc != cacheMaxAge {
		t.Errorf("expected cache-control %q, got %q", cacheMaxAge, cc)
	}
	var cat models.Catalog
	if err := json.Unmarshal(decode(t, w).Data, &cat); err != nil {
		t.Fatal(err)
	}
	if len(cat.Zones) != 2 || len(cat.Periods) != 3 {
		t.Errorf("unexpected catalog %+v", cat)
	}
}

func TestAPIHandlers_Errors(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		status int
		code   string
	}{
		{"unknown metric", "/api/overview?metric=rent", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown area", "/api/areas/9999999", http.StatusNotFound, "INVALID_AREA"},
		{"no reference data", "/api/areas/" + testutil.AreaHakdong, http.StatusNotFound, "EMPTY_RESULT"},
		{"zone mismatch", "/api/areas/" + testutil.AreaGangnam + "?zone_code=" + testutil.ZoneNonhyeon, http.StatusNotFound, "INVALID_AREA"},
		{"bad year", "/api/areas/" + testutil.AreaGangnam + "?year=abc", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"defaults unknown area", "/api/areas/9999999/defaults", http.StatusNotFound, "INVALID_AREA"},
	}

	mux := newMux(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, mux, httptest.NewRequest(http.MethodGet, tt.url, nil))
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			env := decode(t, w)
			if env.Success || env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("expected error code %s, got %+v", tt.code, env.Error)
			}
		})
	}
}

func TestAPIHandlers_Overview(t *testing.T) {
	w := serve(t, newMux(t), httptest.NewRequest(http.MethodGet, "/api/overview?metric=store_count", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var view struct {
		Metric  string              `json:"metric"`
		Ranking []models.RankedArea `json:"ranking"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &view); err != nil {
		t.Fatal(err)
	}
	if view.Metric != "store_count" || len(view.Ranking) != 3 {
		t.Errorf("unexpected overview %+v", view)
	}
}

func TestAPIHandlers_Area(t *testing.T) {
	w := serve(t, newMux(t), httptest.NewRequest(http.MethodGet, "/api/areas/"+testutil.AreaGangnam+"?year=2023&quarter=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var view struct {
		Selection models.Selection `json:"selection"`
		Headlines []struct {
			Label string `json:"label"`
		} `json:"headlines"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &view); err != nil {
		t.Fatal(err)
	}
	if view.Selection.Quarter != 2 || view.Selection.ZoneCode != testutil.ZoneYeoksam {
		t.Errorf("selection = %+v", view.Selection)
	}
	if len(view.Headlines) != 3 {
		t.Errorf("expected 3 headlines, got %d", len(view.Headlines))
	}
}

func TestAPIHandlers_Defaults(t *testing.T) {
	w := serve(t, newMux(t), httptest.NewRequest(http.MethodGet, "/api/areas/"+testutil.AreaGangnam+"/defaults", nil))
	var view struct {
		Selection models.Selection   `json:"selection"`
		Defaults  models.UserInput   `json:"defaults"`
		Bounds    models.InputBounds `json:"bounds"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &view); err != nil {
		t.Fatal(err)
	}
	if view.Selection.Period() != (models.Period{Year: 2023, Quarter: 4}) {
		t.Errorf("default period = %v", view.Selection.Period())
	}
	if view.Defaults.StoreCount == nil || *view.Defaults.StoreCount != 14 {
		t.Errorf("default store count = %v", view.Defaults.StoreCount)
	}
	if len(view.Defaults.FloatingPopulation) != 6 {
		t.Errorf("expected 6 floating values, got %v", view.Defaults.FloatingPopulation)
	}
}

func TestAPIHandlers_Predict(t *testing.T) {
	body, err := json.Marshal(models.PredictionRequest{
		Selection: testutil.Selection(testutil.AreaGangnam),
		Input:     testutil.Input(50),
	})
	if err != nil {
		t.Fatal(err)
	}

	w := serve(t, newMux(t), httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body)
	}
	var est models.Estimate
	if err := json.Unmarshal(decode(t, w).Data, &est); err != nil {
		t.Fatal(err)
	}
	if len(est.Slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(est.Slots))
	}
	if math.Abs(est.Total-12) > 1e-9 {
		t.Errorf("total = %v, want 12", est.Total)
	}
	if est.ModelVersion != "test" {
		t.Errorf("model version = %q", est.ModelVersion)
	}
}

func TestAPIHandlers_PredictInvalid(t *testing.T) {
	in := testutil.Input(50)
	in.Income = nil
	missing, _ := json.Marshal(models.PredictionRequest{Selection: testutil.Selection(testutil.AreaGangnam), Input: in})
	noZone := testutil.Selection(testutil.AreaGangnam)
	noZone.ZoneCode = ""
	unzoned, _ := json.Marshal(models.PredictionRequest{Selection: noZone, Input: testutil.Input(50)})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"not json", "{", http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown field", `{"selection":{},"rent":1}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"missing input", string(missing), http.StatusBadRequest, "MISSING_INPUT"},
		{"missing zone", string(unzoned), http.StatusBadRequest, "MISSING_INPUT"},
	}

	mux := newMux(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, mux, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(tt.body)))
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			if env := decode(t, w); env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("expected error code %s, got %+v", tt.code, env.Error)
			}
		})
	}
}

func TestAPIHandlers_Export(t *testing.T) {
	mux := newMux(t)
	url := ExportURL(testutil.Selection(testutil.AreaGangnam), testutil.Input(50))

	w := serve(t, mux, httptest.NewRequest(http.MethodGet, url, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != export.ContentType {
		t.Errorf("content-type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "prediction_3110001_2024Q1.xlsx") {
		t.Errorf("content-disposition = %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("body is not a zip container")
	}

	w = serve(t, mux, httptest.NewRequest(http.MethodGet, "/api/predict/export?area="+testutil.AreaGangnam, nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for missing inputs, got %d", http.StatusBadRequest, w.Code)
	}
}
