package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/clinstack/dashboard-analytics"

// EngineMetrics holds the aggregation engine's instruments
type EngineMetrics struct {
	AggregationCount    metric.Int64Counter
	AggregationDuration metric.Float64Histogram
	CacheHitCount       metric.Int64Counter
	CacheMissCount      metric.Int64Counter
	SkippedRecordCount  metric.Int64Counter
}

// Setup initializes OpenTelemetry: otlp-grpc trace and metric exporters plus
// Go runtime instrumentation. Returns a shutdown function.
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	// Set up trace exporter
	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Set up metric exporter
	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		return nil, err
	}

	// Shutdown function
	shutdown := func(ctx context.Context) error {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			return err
		}
		return meterProvider.Shutdown(ctx)
	}

	return shutdown, nil
}

// InitEngineMetrics initializes the aggregation engine instruments
func InitEngineMetrics() (*EngineMetrics, error) {
	meter := otel.Meter(instrumentationName)

	aggregationCount, err := meter.Int64Counter(
		"analytics.aggregation.count",
		metric.WithDescription("Number of facade aggregations run"),
	)
	if err != nil {
		return nil, err
	}

	aggregationDuration, err := meter.Float64Histogram(
		"analytics.aggregation.duration",
		metric.WithDescription("Aggregation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHitCount, err := meter.Int64Counter(
		"analytics.cache.hit.count",
		metric.WithDescription("Number of record cache hits"),
	)
	if err != nil {
		return nil, err
	}

	cacheMissCount, err := meter.Int64Counter(
		"analytics.cache.miss.count",
		metric.WithDescription("Number of record cache misses"),
	)
	if err != nil {
		return nil, err
	}

	skippedRecordCount, err := meter.Int64Counter(
		"analytics.records.skipped.count",
		metric.WithDescription("Number of records excluded for malformed dates"),
	)
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		AggregationCount:    aggregationCount,
		AggregationDuration: aggregationDuration,
		CacheHitCount:       cacheHitCount,
		CacheMissCount:      cacheMissCount,
		SkippedRecordCount:  skippedRecordCount,
	}, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(instrumentationName)
	return tracer.Start(ctx, spanName)
}

// RecordAggregation records one facade run
func (m *EngineMetrics) RecordAggregation(ctx context.Context, rangeOption string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("analytics.range", rangeOption))
	m.AggregationCount.Add(ctx, 1, attrs)
	m.AggregationDuration.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
}

// RecordCacheHit records a cache hit for the named cache
func (m *EngineMetrics) RecordCacheHit(ctx context.Context, cacheName string) {
	if m == nil {
		return
	}
	m.CacheHitCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.name", cacheName)))
}

// RecordCacheMiss records a cache miss for the named cache
func (m *EngineMetrics) RecordCacheMiss(ctx context.Context, cacheName string) {
	if m == nil {
		return
	}
	m.CacheMissCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.name", cacheName)))
}

// RecordSkipped records records dropped for unparsable dates
func (m *EngineMetrics) RecordSkipped(ctx context.Context, recordKind string, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.SkippedRecordCount.Add(ctx, n, metric.WithAttributes(attribute.String("record.kind", recordKind)))
}
