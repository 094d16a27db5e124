// Package retry centralises the retry-with-jitter policy used by LLM stage
// calls so individual stages never scatter their own sleep-and-retry loops.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Config bounds a single retry policy.
type Config struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterMin     time.Duration
	JitterMax     time.Duration
}

// DefaultConfig matches the "retried once with 50-150ms jitter backoff"
// policy used for gate/intent timeouts.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   2,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      150 * time.Millisecond,
		BackoffFactor: 1.0,
		JitterMin:     50 * time.Millisecond,
		JitterMax:     150 * time.Millisecond,
	}
}

// Classifier decides whether an error returned by the attempted function is
// worth retrying. Errors that are not retriable stop the loop immediately.
type Classifier func(error) bool

// Do runs fn at most cfg.MaxAttempts times in total, retrying while
// classify(err) is true and the context has not been cancelled. It returns the last error if
// every attempt fails.
func Do(ctx context.Context, cfg Config, classify Classifier, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == cfg.MaxAttempts || (classify != nil && !classify(lastErr)) {
			return lastErr
		}

		wait := jitter(delay, cfg.JitterMin, cfg.JitterMax)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(math.Min(
			float64(cfg.MaxDelay),
			float64(delay)*cfg.BackoffFactor,
		))
	}
	return lastErr
}

func jitter(base, min, max time.Duration) time.Duration {
	if max <= min {
		return base
	}
	span := max - min
	return min + time.Duration(rand.Int63n(int64(span)))
}
