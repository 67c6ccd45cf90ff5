package bootstrap

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	commonconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range tests {
		if got := ParseLevel(raw); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestEnableFileLogging_Disabled(t *testing.T) {
	logger, err := EnableFileLogging(commonconfig.LogConfig{}, "hideseek.log", false)
	if err != nil || logger != nil {
		t.Fatalf("expected (nil, nil), got %v %v", logger, err)
	}
}

func TestEnableFileLogging_InvalidRotation(t *testing.T) {
	_, err := EnableFileLogging(commonconfig.LogConfig{Dir: t.TempDir()}, "hideseek.log", false)
	if err == nil {
		t.Fatal("expected error for zero rotation values")
	}
}

func TestTraceHandler_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(withTraceCorrelation(slog.NewTextHandler(&buf, nil)))

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	logger.InfoContext(ctx, "with_span")
	span.End()

	logger.InfoContext(context.Background(), "without_span")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "trace_id="+span.SpanContext().TraceID().String()) {
		t.Errorf("missing trace_id: %s", lines[0])
	}
	if strings.Contains(lines[1], "trace_id=") {
		t.Errorf("unexpected trace_id without span: %s", lines[1])
	}
}

func TestTraceHandler_MarksUnsampledSpans(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(withTraceCorrelation(slog.NewTextHandler(&buf, nil))).With("service", "hideseek")

	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample()))
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger.InfoContext(ctx, "unsampled")

	if !strings.Contains(buf.String(), "trace_sampled=false") {
		t.Errorf("missing trace_sampled flag: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "service=hideseek") {
		t.Errorf("WithAttrs must keep attributes: %s", buf.String())
	}
}
