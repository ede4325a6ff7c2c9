package observability

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/livescan/internal/observability/logger"
	"github.com/smallbiznis/livescan/internal/observability/metrics"
	"github.com/smallbiznis/livescan/internal/observability/tracing"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		provideLoggerConfig,
		provideTracingConfig,
		logger.New,
		metrics.NewHTTPMetrics,
		tracing.New,
	),
)

func provideTracingConfig(cfg Config) tracing.Config {
	return tracing.Config{
		ServiceName:      cfg.ServiceName,
		Environment:      cfg.Environment,
		Version:          cfg.Version,
		Enabled:          cfg.OtelEnabled,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		SamplingRatio:    cfg.OtelSamplingRatio,
	}
}

func provideLoggerConfig(cfg Config) logger.Config {
	return logger.Config{
		ServiceName:         cfg.ServiceName,
		Environment:         cfg.Environment,
		Version:             cfg.Version,
		Level:               cfg.LogLevel,
		Format:              cfg.LogFormat,
		IncludeCaller:       true,
		IncludeStackOnError: !cfg.Debug(),
	}
}
