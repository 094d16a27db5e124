// Package metrics exposes the process's Prometheus instruments: HTTP
// request counters, stage latencies, cache hit/miss counts, and job-store
// counters.
package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics bundles every instrument the pipeline records to.
type AppMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	StageDuration   metric.Float64Histogram
	StageFailures   metric.Int64Counter
	CacheHits       metric.Int64Counter
	CacheMisses     metric.Int64Counter
	JobsCreated     metric.Int64Counter
	JobsStaleMarked metric.Int64Counter
	ProviderCalls   metric.Int64Counter
	WSPublishes     metric.Int64Counter
}

var (
	instance *AppMetrics
	once     sync.Once
)

// InitAppMetrics builds the metric instruments exactly once against the
// global meter provider installed by tracer.InitOtelProviders.
func InitAppMetrics() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("placesearch")

		httpReqs, _ := meter.Int64Counter("http_requests_total")
		httpDur, _ := meter.Float64Histogram("http_request_duration_seconds")
		stageDur, _ := meter.Float64Histogram("stage_duration_seconds")
		stageFail, _ := meter.Int64Counter("stage_failures_total")
		cacheHit, _ := meter.Int64Counter("cache_hits_total")
		cacheMiss, _ := meter.Int64Counter("cache_misses_total")
		jobsCreated, _ := meter.Int64Counter("jobs_created_total")
		jobsStale, _ := meter.Int64Counter("jobs_stale_marked_total")
		providerCalls, _ := meter.Int64Counter("provider_calls_total")
		wsPublishes, _ := meter.Int64Counter("ws_publishes_total")

		instance = &AppMetrics{
			HTTPRequestsTotal:   httpReqs,
			HTTPRequestDuration: httpDur,
			StageDuration:       stageDur,
			StageFailures:       stageFail,
			CacheHits:           cacheHit,
			CacheMisses:         cacheMiss,
			JobsCreated:         jobsCreated,
			JobsStaleMarked:     jobsStale,
			ProviderCalls:       providerCalls,
			WSPublishes:         wsPublishes,
		}
	})
	return instance
}

func get() *AppMetrics {
	if instance == nil {
		return InitAppMetrics()
	}
	return instance
}

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	m := get()
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordStage records the duration and outcome of one pipeline stage.
func RecordStage(stage string, d time.Duration, failed bool) {
	m := get()
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("stage", stage))
	m.StageDuration.Record(ctx, d.Seconds(), attrs)
	if failed {
		m.StageFailures.Add(ctx, 1, attrs)
	}
}

// RecordCache records a cache lookup outcome for one tier.
func RecordCache(tier string, hit bool) {
	m := get()
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("tier", tier))
	if hit {
		m.CacheHits.Add(ctx, 1, attrs)
	} else {
		m.CacheMisses.Add(ctx, 1, attrs)
	}
}

// RecordJobCreated increments the job-creation counter.
func RecordJobCreated() {
	get().JobsCreated.Add(context.Background(), 1)
}

// RecordJobStaleMarked increments the stale-transition counter.
func RecordJobStaleMarked() {
	get().JobsStaleMarked.Add(context.Background(), 1)
}

// RecordProviderCall increments the outbound-provider-call counter.
func RecordProviderCall(route string) {
	get().ProviderCalls.Add(context.Background(), 1, metric.WithAttributes(attribute.String("route", route)))
}

// RecordWSPublish increments the WebSocket publish counter.
func RecordWSPublish(eventType string) {
	get().WSPublishes.Add(context.Background(), 1, metric.WithAttributes(attribute.String("event_type", eventType)))
}
