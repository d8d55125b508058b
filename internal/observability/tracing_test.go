package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestStartSpan_Nested(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "parent")
	_, child := StartSpan(ctx, "child")

	if child.TraceID != parent.TraceID {
		t.Errorf("child trace %s, want %s", child.TraceID, parent.TraceID)
	}
	if child.ParentID != parent.SpanID {
		t.Errorf("child parent %s, want %s", child.ParentID, parent.SpanID)
	}
	if GetSpan(ctx) != parent {
		t.Error("GetSpan should return the span stored in the context")
	}
}

func TestLogSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := WithRequestID(context.Background(), "req-1")
	ctx, span := StartSpan(ctx, "inference.predict")
	span.SetTag("area_code", "3110001")
	span.SetError(errors.New("boom"))
	span.Finish()

	LogSpan(ctx, logger, span)

	out := buf.String()
	for _, want := range []string{"level=WARN", "inference.predict", "area_code=3110001", "request_id=req-1", "error=boom", "duration="} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q should contain %q", out, want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
