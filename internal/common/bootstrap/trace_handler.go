package bootstrap

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// traceHandler: 현재 span 이 있는 로그 레코드에 trace_id/span_id 를 붙인다.
// 샘플링되지 않은 span 은 trace_sampled=false 를 함께 남겨 수집기에서 찾을 수 없음을 표시한다.
type traceHandler struct {
	slog.Handler
}

func withTraceCorrelation(inner slog.Handler) slog.Handler {
	return traceHandler{Handler: inner}
}

func (h traceHandler) Handle(ctx context.Context, record slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
		if !spanCtx.IsSampled() {
			record.AddAttrs(slog.Bool("trace_sampled", false))
		}
	}
	//nolint:wrapcheck // slog.Handler interface implementation
	return h.Handler.Handle(ctx, record)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{Handler: h.Handler.WithGroup(name)}
}
