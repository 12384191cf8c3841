package webotp

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type counters struct {
	requests metric.Int64Counter
	codes    metric.Int64Counter
	failures metric.Int64Counter
}

func newCounters(m metric.Meter, log *slog.Logger) counters {
	var c counters
	var err error

	if c.requests, err = m.Int64Counter("webotp.requests", metric.WithDescription("Credential requests issued")); err != nil {
		log.Error("failed to create webotp request counter", "error", err)
	}
	if c.codes, err = m.Int64Counter("webotp.codes", metric.WithDescription("One-time codes received")); err != nil {
		log.Error("failed to create webotp code counter", "error", err)
	}
	if c.failures, err = m.Int64Counter("webotp.failures", metric.WithDescription("Credential requests rejected")); err != nil {
		log.Error("failed to create webotp failure counter", "error", err)
	}

	return c
}

func (c counters) request(ctx context.Context) {
	if c.requests != nil {
		c.requests.Add(ctx, 1)
	}
}

func (c counters) code(ctx context.Context, current bool) {
	if c.codes != nil {
		c.codes.Add(ctx, 1, metric.WithAttributes(attribute.Bool("current", current)))
	}
}

func (c counters) failure(ctx context.Context, name string) {
	if c.failures != nil {
		c.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("error.name", name)))
	}
}
