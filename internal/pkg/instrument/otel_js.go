//go:build js && wasm

package instrument

import (
	"context"
	"log/slog"
)

// New configures the default slog logger. Exporters are not available in the
// browser, so the returned instrumentation is always a noop.
func New(_ context.Context, cfg *Config) (Instrumentation, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	slog.SetDefault(NewLogger(cfg.logConfig()))
	return NewNoop(), nil
}
