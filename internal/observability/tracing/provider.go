// Package tracing configures the OpenTelemetry trace provider.
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config carries the tracing settings mapped from the observability config.
type Config struct {
	ServiceName      string
	Environment      string
	Version          string
	Enabled          bool
	ExporterEndpoint string
	SamplingRatio    float64
}

// Provider owns the configured trace provider, if any.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// New sets up an OTLP/gRPC exporter when tracing is enabled. When disabled
// it returns an empty provider and the global tracer stays a noop.
func New(lc fx.Lifecycle, cfg Config, log *zap.Logger) (*Provider, error) {
	if !cfg.Enabled || cfg.ExporterEndpoint == "" {
		return &Provider{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.ExporterEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRatio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				log.Warn("trace provider shutdown", zap.Error(err))
			}
			return nil
		},
	})

	log.Info("tracing enabled", zap.String("endpoint", cfg.ExporterEndpoint))
	return &Provider{tp: tp}, nil
}

func (p *Provider) Enabled() bool {
	return p != nil && p.tp != nil
}
