package metrics

import (
	"context"
	"fmt"
	"time"

	"storefront-api/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const serviceName = "storefront-api"

// Metrics holds the instruments recorded by the HTTP layer and the
// domain services.
type Metrics struct {
	PincodeChecks  metric.Int64Counter
	CartMutations  metric.Int64Counter
	OrdersTracked  metric.Int64Counter
	ActiveCarts    metric.Int64Gauge
	RequestCount   metric.Int64Counter
	RequestLatency metric.Float64Histogram
}

// Init configures an OTLP meter provider and builds the application
// instruments. When telemetry is disabled it returns no-op
// instruments and a nil shutdown func.
func Init(ctx context.Context, cfg config.TelemetryConfig) (*Metrics, func(context.Context) error, error) {
	if !cfg.Enabled {
		m, err := build(noop.NewMeterProvider().Meter(serviceName))
		return m, nil, err
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(time.Duration(cfg.ExportInterval)*time.Second),
		)),
	)
	otel.SetMeterProvider(provider)

	m, err := build(provider.Meter(serviceName))
	if err != nil {
		provider.Shutdown(ctx)
		return nil, nil, err
	}

	return m, provider.Shutdown, nil
}

func build(meter metric.Meter) (*Metrics, error) {
	pincodeChecks, err := meter.Int64Counter(
		"pincode_checks_total",
		metric.WithDescription("Serviceability lookups by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pincode checks counter: %w", err)
	}

	cartMutations, err := meter.Int64Counter(
		"cart_mutations_total",
		metric.WithDescription("Cart add/update/remove operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart mutations counter: %w", err)
	}

	ordersTracked, err := meter.Int64Counter(
		"orders_tracked_total",
		metric.WithDescription("Order tracking lookups"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create orders tracked counter: %w", err)
	}

	activeCarts, err := meter.Int64Gauge(
		"active_carts_count",
		metric.WithDescription("Sessions with a cart in memory"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active carts gauge: %w", err)
	}

	requestCount, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	requestLatency, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request histogram: %w", err)
	}

	return &Metrics{
		PincodeChecks:  pincodeChecks,
		CartMutations:  cartMutations,
		OrdersTracked:  ordersTracked,
		ActiveCarts:    activeCarts,
		RequestCount:   requestCount,
		RequestLatency: requestLatency,
	}, nil
}

// RecordPincodeCheck counts one serviceability lookup.
func (m *Metrics) RecordPincodeCheck(ctx context.Context, outcome string) {
	m.PincodeChecks.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordCartMutation counts one cart operation.
func (m *Metrics) RecordCartMutation(ctx context.Context, op string) {
	m.CartMutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}

// RecordRequest counts one HTTP request and its latency.
func (m *Metrics) RecordRequest(ctx context.Context, route string, status int, start time.Time) {
	attrs := metric.WithAttributes(
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.RequestCount.Add(ctx, 1, attrs)
	m.RequestLatency.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
}
