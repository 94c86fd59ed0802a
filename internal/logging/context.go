package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	runIDKey ctxKey = iota
	pluginKey
	resourceKey
)

// WithRunID returns a context with the analysis run ID set.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// WithPlugin returns a context with the plugin name set.
func WithPlugin(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, pluginKey, name)
}

// WithResource returns a context with the resource/file reference set.
func WithResource(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, resourceKey, ref)
}

// RunID extracts the run ID from the context, or "" if absent.
func RunID(ctx context.Context) string {
	v, _ := ctx.Value(runIDKey).(string)
	return v
}

// Plugin extracts the plugin name from the context, or "" if absent.
func Plugin(ctx context.Context) string {
	v, _ := ctx.Value(pluginKey).(string)
	return v
}

// Resource extracts the resource reference from the context, or "" if absent.
func Resource(ctx context.Context) string {
	v, _ := ctx.Value(resourceKey).(string)
	return v
}

// CorrelationHandler wraps an slog.Handler, automatically injecting run,
// plugin and resource IDs from the context into every log record.
// Use with slog.New(NewCorrelationHandler(inner)) so callers can use
// logger.InfoContext(ctx, ...) and IDs appear automatically.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler with automatic correlation ID injection.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	if v := RunID(ctx); v != "" {
		r.AddAttrs(slog.String("run_id", v))
	}
	if v := Plugin(ctx); v != "" {
		r.AddAttrs(slog.String("plugin", v))
	}
	if v := Resource(ctx); v != "" {
		r.AddAttrs(slog.String("resource", v))
	}
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
