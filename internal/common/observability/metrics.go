// internal/common/observability/metrics.go
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records run-level instruments through an OpenTelemetry
// meter exported in Prometheus format.
type Observability struct {
	meterProvider *metric.MeterProvider
	runCounter    otelmetric.Int64Counter
	runDuration   otelmetric.Float64Histogram
	providerCalls otelmetric.Int64Counter
	jobCounter    otelmetric.Int64Counter
}

func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	return newWithProvider(provider, serviceName)
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) (*Observability, error) {
	meter := provider.Meter(serviceName)
	o := &Observability{meterProvider: provider}

	var err error
	if o.runCounter, err = meter.Int64Counter(
		"listing.runs",
		otelmetric.WithDescription("Number of search pipeline runs"),
	); err != nil {
		return nil, err
	}
	if o.runDuration, err = meter.Float64Histogram(
		"listing.run.duration",
		otelmetric.WithDescription("Search pipeline run duration"),
		otelmetric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if o.providerCalls, err = meter.Int64Counter(
		"listing.provider.calls",
		otelmetric.WithDescription("Number of search provider calls"),
	); err != nil {
		return nil, err
	}
	if o.jobCounter, err = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	); err != nil {
		return nil, err
	}
	return o, nil
}

// RecordRun records one pipeline run. transport is "http" or "job".
func (o *Observability) RecordRun(ctx context.Context, transport, mode string, listings int, providerFailed bool, duration time.Duration) {
	if o == nil || o.runCounter == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("transport", transport),
		attribute.String("mode", mode),
		attribute.Bool("provider_failed", providerFailed),
		attribute.Bool("empty", listings == 0),
	)
	o.runCounter.Add(ctx, 1, attrs)
	o.runDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (o *Observability) RecordProviderCall(ctx context.Context, provider, status string) {
	if o == nil || o.providerCalls == nil {
		return
	}
	o.providerCalls.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobProcessed(ctx context.Context, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
