package instrument

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	otellog "go.opentelemetry.io/otel/log"
)

// LogConfig configures NewLogger.
type LogConfig struct {
	// ServiceName is added to every record as "service".
	ServiceName string
	// Level is a slog level name. Defaults to info.
	Level string
	// Writer receives JSON lines. Defaults to os.Stdout.
	Writer io.Writer
	// MaskFields lists attribute keys whose values are redacted.
	MaskFields []string
	// Mask redacts a string value. Defaults to "***".
	Mask func(string) string
	// Provider, when set, also ships records through OpenTelemetry.
	Provider otellog.LoggerProvider
}

// NewLogger builds the application logger: JSON records with "ts",
// "severity" and "file" keys, masked sensitive fields, the service name and
// the correlation ID from the context.
func NewLogger(cfg LogConfig) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   true,
		ReplaceAttr: replaceAttr,
	})

	var handler slog.Handler = jsonHandler
	if cfg.Provider != nil {
		handler = &multiHandler{handlers: []slog.Handler{
			jsonHandler,
			otelslog.NewHandler(cfg.ServiceName, otelslog.WithLoggerProvider(cfg.Provider)),
		}}
	}

	mask := cfg.Mask
	if mask == nil {
		mask = func(string) string { return "***" }
	}

	return slog.New(&contextHandler{
		Handler:     &maskHandler{handler: handler, maskKeys: buildMaskKeys(cfg.MaskFields), mask: mask},
		serviceName: cfg.ServiceName,
	})
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		_, rel, found := strings.Cut(src.File, "/internal/")
		if !found {
			return slog.Attr{}
		}
		return slog.String("file", fmt.Sprintf("%s:%d", filepath.Join("internal", rel), src.Line))
	}
	return a
}

type contextHandler struct {
	slog.Handler
	serviceName string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if cID := GetCorrelationID(ctx); cID != "" {
		r.AddAttrs(slog.String("_cID", cID))
	}
	if h.serviceName != "" {
		r.AddAttrs(slog.String("service", h.serviceName))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), serviceName: h.serviceName}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), serviceName: h.serviceName}
}

type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range m.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, handler := range m.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, 0, len(m.handlers))
	for _, handler := range m.handlers {
		handlers = append(handlers, handler.WithAttrs(attrs))
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, 0, len(m.handlers))
	for _, handler := range m.handlers {
		handlers = append(handlers, handler.WithGroup(name))
	}
	return &multiHandler{handlers: handlers}
}

// maskHandler redacts attributes whose key is listed, at any depth of groups
// and maps. Attributes added through WithAttrs are masked too.
type maskHandler struct {
	handler  slog.Handler
	maskKeys map[string]struct{}
	mask     func(string) string
}

func (h *maskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *maskHandler) Handle(ctx context.Context, record slog.Record) error {
	if len(h.maskKeys) == 0 {
		return h.handler.Handle(ctx, record)
	}

	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(attr))
		return true
	})

	return h.handler.Handle(ctx, masked)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		maskedAttrs = append(maskedAttrs, h.maskAttr(attr))
	}
	return &maskHandler{handler: h.handler.WithAttrs(maskedAttrs), maskKeys: h.maskKeys, mask: h.mask}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{handler: h.handler.WithGroup(name), maskKeys: h.maskKeys, mask: h.mask}
}

func (h *maskHandler) masked(key string) bool {
	_, found := h.maskKeys[strings.ToLower(key)]
	return found
}

func (h *maskHandler) maskAttr(attr slog.Attr) slog.Attr {
	attr.Value = attr.Value.Resolve()

	if h.masked(attr.Key) && attr.Value.Kind() != slog.KindGroup {
		return slog.String(attr.Key, h.mask(attr.Value.String()))
	}

	switch attr.Value.Kind() {
	case slog.KindGroup:
		group := attr.Value.Group()
		masked := make([]slog.Attr, 0, len(group))
		for _, ga := range group {
			masked = append(masked, h.maskAttr(ga))
		}
		attr.Value = slog.GroupValue(masked...)
	case slog.KindAny:
		switch v := attr.Value.Any().(type) {
		case map[string]any:
			attr.Value = slog.AnyValue(h.maskData(v))
		case map[string]string:
			converted := make(map[string]any, len(v))
			for k, s := range v {
				converted[k] = s
			}
			attr.Value = slog.AnyValue(h.maskData(converted))
		case []any:
			attr.Value = slog.AnyValue(h.maskData(v))
		}
	}

	return attr
}

func (h *maskHandler) maskData(v any) any {
	switch val := v.(type) {
	case map[string]any:
		masked := make(map[string]any, len(val))
		for k, v2 := range val {
			if s, ok := v2.(string); ok && h.masked(k) {
				masked[k] = h.mask(s)
				continue
			}
			if h.masked(k) {
				masked[k] = h.mask(fmt.Sprint(v2))
				continue
			}
			masked[k] = h.maskData(v2)
		}
		return masked
	case []any:
		res := make([]any, len(val))
		for i, v2 := range val {
			res[i] = h.maskData(v2)
		}
		return res
	default:
		return v
	}
}

func buildMaskKeys(fields []string) map[string]struct{} {
	maskKeys := make(map[string]struct{})
	for _, field := range fields {
		field = strings.TrimSpace(strings.ToLower(field))
		if field == "" {
			continue
		}
		maskKeys[field] = struct{}{}
	}
	return maskKeys
}
