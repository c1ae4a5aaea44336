// Package telemetry initializes OpenTelemetry tracing and metrics exporters.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Scope is the instrumentation scope for every garden tracer and meter.
const Scope = "github.com/roach88/garden"

// Shutdown flushes and stops the installed providers.
type Shutdown func(ctx context.Context) error

// Init configures the global tracer and meter providers. An empty endpoint
// leaves the no-op providers in place.
func Init(ctx context.Context, endpoint, serviceName, version string, insecure bool) (Shutdown, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create resource: %w", err)
	}

	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
	}
	traceExp, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}
	metricExp, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("telemetry: create metric exporter: %w", err)
	}

	// CLI invocations are short; the final flush happens in Shutdown.
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp,
			sdkmetric.WithInterval(15*time.Second),
		)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		var firstErr error
		if err := tp.Shutdown(ctx); err != nil {
			firstErr = err
		}
		if err := mp.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		return firstErr
	}, nil
}

// Meter returns the global garden meter.
func Meter() metric.Meter {
	return otel.GetMeterProvider().Meter(Scope)
}

// Tracer returns the global garden tracer.
func Tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(Scope)
}

// Counters used by the engine and generator.
type Counters struct {
	CheckIns          metric.Int64Counter
	GeneratorFallback metric.Int64Counter
	SunlightCredited  metric.Int64Counter
}

// NewCounters registers the garden counters on m. Registration errors from
// the no-op meter never occur; real meters only fail on invalid names.
func NewCounters(m metric.Meter) (*Counters, error) {
	checkins, err := m.Int64Counter("garden.checkins",
		metric.WithDescription("Committed study check-ins"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: garden.checkins: %w", err)
	}
	fallbacks, err := m.Int64Counter("garden.generator.fallbacks",
		metric.WithDescription("Generator calls answered by fixed fallback content"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: garden.generator.fallbacks: %w", err)
	}
	credited, err := m.Int64Counter("garden.sunlight.credited",
		metric.WithDescription("Sunlight credited to the ledger"),
		metric.WithUnit("{sunlight}"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: garden.sunlight.credited: %w", err)
	}
	return &Counters{
		CheckIns:          checkins,
		GeneratorFallback: fallbacks,
		SunlightCredited:  credited,
	}, nil
}
