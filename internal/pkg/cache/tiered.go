// Package cache implements the three-tier cache contract (spec §4.B): one
// operation getOrFetch(key, ttl, fetchFn) wrapping L0 in-flight dedupe, L1
// bounded in-process TTL cache, and L2 shared Redis cache. No tier failure
// may propagate out of GetOrFetch — only the fetch's own failure does.
package cache

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"go.uber.org/zap"

	appmetrics "github.com/shacharon/placesearch/internal/app/observability/metrics"
)

// Tiered composes L0/L1/L2 behind one getOrFetch operation.
type Tiered struct {
	l0           *L0
	l1           *L1
	l2           *L2
	emptyL1TTL   time.Duration
	emptyL2TTL   time.Duration
	logger       *zap.Logger
	samplingRate float64
}

// NewTiered wires the three tiers together.
func NewTiered(l0 *L0, l1 *L1, l2 *L2, emptyL1TTL, emptyL2TTL time.Duration, samplingRate float64, logger *zap.Logger) *Tiered {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tiered{l0: l0, l1: l1, l2: l2, emptyL1TTL: emptyL1TTL, emptyL2TTL: emptyL2TTL, samplingRate: samplingRate, logger: logger}
}

// FetchFunc fetches the authoritative value for a cache miss. isEmpty lets
// the caller flag a structurally-empty result (e.g. zero places) so it is
// cached under the shorter empty-result TTL rather than the normal one.
type FetchFunc func(ctx context.Context) (value []byte, isEmpty bool, err error)

// GetOrFetch implements the L0→L1→L2→fetch flow. ttl is the L2 TTL used for
// a non-empty result; L1's own TTL is capped independently by the L1 tier's
// configured max.
func (t *Tiered) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	if v, ok := t.l1.Get(key); ok {
		t.debugEvent("cache_l1_hit", key)
		appmetrics.RecordCache("l1", true)
		return v, nil
	}

	if v, ok := t.l2.Get(ctx, key); ok {
		t.debugEvent("cache_l2_hit", key)
		appmetrics.RecordCache("l2", true)
		t.l1.Set(key, v, ttl)
		return v, nil
	}
	appmetrics.RecordCache("l1", false)
	appmetrics.RecordCache("l2", false)

	result, err, _ := t.l0.Do(key, func() (any, error) {
		// Double-check L1 now that we hold the in-flight slot: another
		// caller may have just populated it while we were queued.
		if v, ok := t.l1.Get(key); ok {
			return v, nil
		}

		value, isEmpty, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		l1TTL, l2TTL := ttl, ttl
		if isEmpty {
			l1TTL, l2TTL = t.emptyL1TTL, t.emptyL2TTL
		}
		t.l1.Set(key, value, l1TTL)
		t.l2.Set(ctx, key, value, l2TTL)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// GetOrFetchJSON is a convenience wrapper around GetOrFetch for JSON-coded
// values.
func GetOrFetchJSON[T any](t *Tiered, ctx context.Context, key string, ttl time.Duration, isEmpty func(T) bool, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	raw, err := t.GetOrFetch(ctx, key, ttl, func(ctx context.Context) ([]byte, bool, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, false, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false, err
		}
		return b, isEmpty(v), nil
	})
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// debugEvent logs at most a samplingRate fraction of cache events, per
// CACHE_SAMPLING_RATE — every hit/miss would otherwise flood the debug log
// under real traffic.
func (t *Tiered) debugEvent(event, key string) {
	if rand.Float64() >= t.samplingRate {
		return
	}
	t.logger.Debug(event, zap.String("key", key))
}
