// Package tracer wires the OpenTelemetry trace and metric providers: OTLP
// traces over HTTP, and a Prometheus exporter serving /metrics.
package tracer

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

// ShutdownFunc flushes and tears down the installed providers.
type ShutdownFunc func(context.Context) error

// InitOtelProviders installs a global TracerProvider (OTLP/HTTP exporter,
// falling back to a no-op tracer if the exporter cannot be built) and a
// global MeterProvider backed by a Prometheus exporter served on
// metricsAddr. It returns a combined shutdown function.
func InitOtelProviders(serviceName, metricsAddr string) (ShutdownFunc, error) {
	ctx := context.Background()
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		res = resource.Default()
	}

	var tp *sdktrace.TracerProvider
	traceExporter, err := otlptracehttp.New(ctx)
	if err != nil {
		tp = sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	} else {
		tp = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		)
	}
	otel.SetTracerProvider(tp)

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		_ = metricsSrv.ListenAndServe()
	}()

	shutdown := func(ctx context.Context) error {
		_ = metricsSrv.Shutdown(ctx)
		if err := tp.Shutdown(ctx); err != nil {
			return err
		}
		return mp.Shutdown(ctx)
	}
	return shutdown, nil
}

// MustLogShutdown is a small helper mirroring the teacher's deferred-error
// logging convention for a shutdown func that must not panic the process.
func MustLogShutdown(shutdown ShutdownFunc, log *zap.Logger) {
	if err := shutdown(context.Background()); err != nil {
		log.Error("observability shutdown failed", zap.Error(err))
	}
}
