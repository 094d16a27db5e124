package server

import (
	"context"
	"fmt"

	"github.com/shacharon/placesearch/internal/app/observability/metrics"
	"github.com/shacharon/placesearch/internal/app/observability/tracer"
	"go.uber.org/zap"
)

// ObservabilityShutdownFunc is the function type returned by InitObservability.
type ObservabilityShutdownFunc func(context.Context) error

// InitObservability initializes OpenTelemetry tracing/metrics exporters and
// the application's own Prometheus collectors.
func InitObservability(serviceName, metricsEndpoint string, logger *zap.Logger) (ObservabilityShutdownFunc, error) {
	otelShutdown, err := tracer.InitOtelProviders(serviceName, metricsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics.InitAppMetrics()
	logger.Info("observability initialized", zap.String("metrics_endpoint", metricsEndpoint+"/metrics"))

	return ObservabilityShutdownFunc(otelShutdown), nil
}
