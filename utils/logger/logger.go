package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

// Init builds the process logger for service, sets it as slog's default and
// returns it. With enableOTel the records are also emitted through the
// otelslog bridge to the global logger provider. LOG_LEVEL gates both outputs.
func Init(service string, enableOTel bool) *slog.Logger {
	return initTo(os.Stdout, service, os.Getenv("LOG_LEVEL"), enableOTel)
}

func initTo(w io.Writer, service, levelName string, enableOTel bool) *slog.Logger {
	level := parseLevel(levelName)

	var handler slog.Handler = NewTraceContextHandler(
		slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
	)
	if enableOTel {
		handler = NewMultiHandler(handler, NewLevelHandler(level, otelslog.NewHandler(
			service,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		)))
	}

	l := slog.New(handler).With("service", service)
	slog.SetDefault(l)
	return l
}

// parseLevel maps LOG_LEVEL values to slog levels, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// TraceContextHandler adds trace_id and span_id to records logged inside a
// span, plus any request keys stored with WithRequestID, WithUserEmail or WithPeer.
type TraceContextHandler struct {
	inner slog.Handler
}

// NewTraceContextHandler wraps inner.
func NewTraceContextHandler(inner slog.Handler) *TraceContextHandler {
	return &TraceContextHandler{inner: inner}
}

// Enabled defers to the wrapped handler.
func (h *TraceContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds the span and request attributes and passes r on.
func (h *TraceContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	r.AddAttrs(contextAttrs(ctx)...)
	return h.inner.Handle(ctx, r)
}

// WithAttrs returns a TraceContextHandler over inner.WithAttrs.
func (h *TraceContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceContextHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup returns a TraceContextHandler over inner.WithGroup.
func (h *TraceContextHandler) WithGroup(name string) slog.Handler {
	return &TraceContextHandler{inner: h.inner.WithGroup(name)}
}

// MultiHandler fans records out to every enabled handler.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler returns a handler writing to every one of handlers.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled reports whether any handler accepts level.
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes a copy of r to each handler enabled for its level. Handler errors are dropped.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			_ = handler.Handle(ctx, r.Clone())
		}
	}
	return nil
}

// WithAttrs applies attrs to every handler.
func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: next}
}

// WithGroup applies the group to every handler.
func (h *MultiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &MultiHandler{handlers: next}
}

// LevelHandler drops records below a minimum level before they reach inner.
type LevelHandler struct {
	level slog.Leveler
	inner slog.Handler
}

// NewLevelHandler wraps inner with a minimum level.
func NewLevelHandler(level slog.Leveler, inner slog.Handler) *LevelHandler {
	return &LevelHandler{level: level, inner: inner}
}

// Enabled reports whether level meets the minimum and inner accepts it.
func (h *LevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() && h.inner.Enabled(ctx, level)
}

// Handle passes r to inner.
func (h *LevelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

// WithAttrs keeps the minimum level over inner.WithAttrs.
func (h *LevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LevelHandler{level: h.level, inner: h.inner.WithAttrs(attrs)}
}

// WithGroup keeps the minimum level over inner.WithGroup.
func (h *LevelHandler) WithGroup(name string) slog.Handler {
	return &LevelHandler{level: h.level, inner: h.inner.WithGroup(name)}
}
