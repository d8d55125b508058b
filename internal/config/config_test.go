package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8501 {
		t.Errorf("expected default port 8501, got %d", cfg.Server.Port)
	}
	if cfg.Dashboard.ReferenceYear != 2023 || cfg.Dashboard.ReferenceQuarter != 3 {
		t.Errorf("expected reference period 2023Q3, got %dQ%d", cfg.Dashboard.ReferenceYear, cfg.Dashboard.ReferenceQuarter)
	}
	if cfg.Predict.Scaler != "batch" {
		t.Errorf("expected batch scaler by default, got %q", cfg.Predict.Scaler)
	}
	if cfg.Data.LoadTimeout != 30*time.Second {
		t.Errorf("expected 30s load timeout, got %v", cfg.Data.LoadTimeout)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DATA_QUARTER_CSV", "/tmp/q.csv")
	t.Setenv("PREDICT_SCALER", "persisted")
	t.Setenv("DASHBOARD_REFERENCE_QUARTER", "2")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a,http://b")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Data.QuarterCSV != "/tmp/q.csv" {
		t.Errorf("expected quarter csv override, got %q", cfg.Data.QuarterCSV)
	}
	if cfg.Predict.Scaler != "persisted" {
		t.Errorf("expected persisted scaler, got %q", cfg.Predict.Scaler)
	}
	if cfg.Dashboard.ReferenceQuarter != 2 {
		t.Errorf("expected reference quarter 2, got %d", cfg.Dashboard.ReferenceQuarter)
	}
	if len(cfg.Security.AllowedOrigins) != 2 {
		t.Errorf("expected 2 allowed origins, got %v", cfg.Security.AllowedOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"bad log level", "LOG_LEVEL", "trace"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"bad quarter", "DASHBOARD_REFERENCE_QUARTER", "5"},
		{"bad scaler", "PREDICT_SCALER", "robust"},
		{"zero rps", "SECURITY_RATE_LIMIT_RPS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s should fail", tt.key, tt.value)
			}
		})
	}
}

func TestAddress(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "0.0.0.0", Port: 8501}}
	if got := cfg.Address(); got != "0.0.0.0:8501" {
		t.Errorf("Address() = %q", got)
	}
}
