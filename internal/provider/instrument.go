package provider

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "storybook-ai/backend/internal/provider"

var (
	instrumentsOnce sync.Once
	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
)

func instruments() (metric.Int64Counter, metric.Float64Histogram) {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)
		requestCounter, _ = meter.Int64Counter("provider_requests_total",
			metric.WithDescription("Upstream provider calls by outcome"))
		requestDuration, _ = meter.Float64Histogram("provider_request_duration_seconds",
			metric.WithDescription("Upstream provider call latency"),
			metric.WithUnit("s"))
	})
	return requestCounter, requestDuration
}

// observe runs fn inside a span and records its outcome
func observe(ctx context.Context, provider, operation string, fn func(ctx context.Context) error) error {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, provider+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("operation", operation),
		))
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := "ok"
	switch {
	case err == nil:
	case IsTimeout(err):
		status = "timeout"
	default:
		status = "error"
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	counter, duration := instruments()
	if counter != nil {
		counter.Add(ctx, 1, attrs)
	}
	if duration != nil {
		duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}

	return err
}
