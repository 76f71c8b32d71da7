package apiclient

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/openkcm/taskmanager-client/pkg/apiclient"

type telemetry struct {
	tracer    trace.Tracer
	requests  metric.Int64Counter
	refreshes metric.Int64Counter
	duration  metric.Int64Histogram
}

func newTelemetry() (*telemetry, error) {
	meter := otel.Meter(
		instrumentationName,
		metric.WithInstrumentationVersion(otel.Version()),
	)

	requests, err := meter.Int64Counter(
		"http.client.request_count",
		metric.WithDescription("Outgoing API request count"),
		metric.WithUnit("request"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request_count meter: %w", err)
	}

	refreshes, err := meter.Int64Counter(
		"http.client.token_refresh_count",
		metric.WithDescription("Access token refresh attempts"),
		metric.WithUnit("refresh"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating token_refresh_count meter: %w", err)
	}

	duration, err := meter.Int64Histogram(
		"http.client.duration",
		metric.WithDescription("Outgoing request duration"),
		metric.WithUnit("milliseconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration meter: %w", err)
	}

	return &telemetry{
		tracer:    otel.Tracer(instrumentationName),
		requests:  requests,
		refreshes: refreshes,
		duration:  duration,
	}, nil
}

func (t *telemetry) recordRequest(ctx context.Context, method string, status int, start time.Time) {
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.Int("http.response.status_code", status),
	)

	t.requests.Add(ctx, 1, attrs)
	t.duration.Record(ctx, time.Since(start).Milliseconds(), attrs)
}

func (t *telemetry) recordRefresh(ctx context.Context, outcome string) {
	t.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
