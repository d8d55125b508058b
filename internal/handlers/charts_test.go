package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"district-dashboard/internal/testutil"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func TestChartHandlers(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"trend", "/charts/areas/" + testutil.AreaGangnam + "/trend.png", http.StatusOK},
		{"timeslots", "/charts/areas/" + testutil.AreaNonhyeon + "/timeslots.png", http.StatusOK},
		{"floating", "/charts/areas/" + testutil.AreaYeoksam + "/floating.png", http.StatusOK},
		{"stores", "/charts/areas/" + testutil.AreaYeoksam + "/stores.png", http.StatusOK},
		{"stores without reference data", "/charts/areas/" + testutil.AreaHakdong + "/stores.png", http.StatusOK},
		{"trend unknown area", "/charts/areas/9999999/trend.png", http.StatusNotFound},
		{"timeslots without reference data", "/charts/areas/" + testutil.AreaHakdong + "/timeslots.png", http.StatusNotFound},
		{"unknown chart", "/charts/areas/" + testutil.AreaGangnam + "/pie.png", http.StatusNotFound},
	}

	mux := newMux(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, mux, httptest.NewRequest(http.MethodGet, tt.url, nil))
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, w.Code)
			}
			if tt.status != http.StatusOK {
				assertErrorCode(t, w, tt.status)
				return
			}
			if ct := w.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("content-type = %q", ct)
			}
			if !bytes.HasPrefix(w.Body.Bytes(), pngSignature) {
				t.Error("body is not a PNG")
			}
		})
	}
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Code == "" {
		t.Errorf("status %d without an error code: %s", status, w.Body.String())
	}
}
