package webotp

import (
	"log/slog"

	"github.com/shandysiswandi/webotp/internal/pkg/clock"
	"github.com/shandysiswandi/webotp/internal/pkg/goroutine"
	"go.opentelemetry.io/otel/metric"
)

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger. The LogPrefix attribute is always added.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

// WithEventName overrides the dispatched event name.
func WithEventName(name string) Option {
	return func(b *Bridge) {
		if name != "" {
			b.eventName = name
		}
	}
}

// WithTransports overrides the transports requested from the platform.
func WithTransports(transports ...string) Option {
	return func(b *Bridge) {
		if len(transports) > 0 {
			b.transports = append([]string{}, transports...)
		}
	}
}

// WithGoroutine runs request continuations on a shared manager.
func WithGoroutine(gm *goroutine.Manager) Option {
	return func(b *Bridge) {
		if gm != nil {
			b.gm = gm
		}
	}
}

// WithClock sets the clock used to stamp events.
func WithClock(c clock.Clocker) Option {
	return func(b *Bridge) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithMeter records request, code and failure counters on m.
func WithMeter(m metric.Meter) Option {
	return func(b *Bridge) {
		if m != nil {
			b.meter = m
		}
	}
}
