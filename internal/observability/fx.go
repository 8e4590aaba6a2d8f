package observability

import (
	"github.com/smallbiznis/gymledger/internal/config"
	"github.com/smallbiznis/gymledger/internal/observability/logger"
	"github.com/smallbiznis/gymledger/internal/observability/metrics"
	"github.com/smallbiznis/gymledger/internal/observability/tracing"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
)

var version = "dev"

// Module wires logging, tracing, and metrics.
var Module = fx.Options(
	logger.Module,
	fx.Provide(func(cfg config.Config) tracing.Config {
		return tracing.Config{
			Enabled:          cfg.Tracing.Enabled,
			ServiceName:      cfg.ServiceName,
			ServiceVersion:   version,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.Tracing.ExporterEndpoint,
			ExporterProtocol: cfg.Tracing.ExporterProtocol,
			SamplingRatio:    cfg.Tracing.SamplingRatio,
		}
	}),
	fx.Provide(tracing.NewProvider),
	fx.Provide(NewMeterProvider),
	fx.Provide(func(cfg config.Config) metrics.Config {
		return metrics.Config{ServiceName: cfg.ServiceName}
	}),
	fx.Provide(metrics.NewHTTPMetrics),
	fx.Provide(metrics.SweepWithConfig),
)

// NewMeterProvider bridges OTel metrics into the default Prometheus
// registry so /metrics serves both instrument families.
func NewMeterProvider() (metric.MeterProvider, error) {
	exporter, err := otelprometheus.New()
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)), nil
}
