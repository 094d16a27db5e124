package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// countingCore is a minimal zapcore.Core that only counts writes, used to
// assert debugEvent's sampling rate without pulling in a log-capture library
// the rest of the corpus doesn't already depend on.
type countingCore struct{ n *int32 }

func (c countingCore) Enabled(zapcore.Level) bool { return true }
func (c countingCore) With([]zapcore.Field) zapcore.Core { return c }
func (c countingCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return ce.AddCore(e, c)
}
func (c countingCore) Write(zapcore.Entry, []zapcore.Field) error {
	atomic.AddInt32(c.n, 1)
	return nil
}
func (c countingCore) Sync() error { return nil }

func newTestTiered(t *testing.T) *Tiered {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l1 := NewL1(500, 60*time.Second, nil)
	l2 := NewL2(rdb, nil)
	return NewTiered(NewL0(), l1, l2, 30*time.Second, 120*time.Second, 1.0, nil)
}

func TestGetOrFetch_SingleFlight(t *testing.T) {
	tc := newTestTiered(t)
	var calls int32

	fetch := func(ctx context.Context) ([]byte, bool, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return []byte(`"value"`), false, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tc.GetOrFetch(context.Background(), "k", time.Minute, fetch)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrFetch_L1PromotionFromL2(t *testing.T) {
	tc := newTestTiered(t)
	ctx := context.Background()

	_, err := tc.GetOrFetch(ctx, "k2", time.Minute, func(ctx context.Context) ([]byte, bool, error) {
		return []byte(`"v2"`), false, nil
	})
	require.NoError(t, err)

	tc.l1.Delete("k2")

	called := false
	v, err := tc.GetOrFetch(ctx, "k2", time.Minute, func(ctx context.Context) ([]byte, bool, error) {
		called = true
		return nil, false, nil
	})
	require.NoError(t, err)
	require.False(t, called, "L2 hit should promote to L1 without calling fetch again")
	require.Equal(t, `"v2"`, string(v))
}

func TestGetOrFetch_FetchFailurePropagates(t *testing.T) {
	tc := newTestTiered(t)
	_, err := tc.GetOrFetch(context.Background(), "k3", time.Minute, func(ctx context.Context) ([]byte, bool, error) {
		return nil, false, assertErr
	})
	require.ErrorIs(t, err, assertErr)
}

var assertErr = errSentinel("boom")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }

func TestDebugEvent_ZeroSamplingRateNeverLogs(t *testing.T) {
	var n int32
	logger := zap.New(countingCore{n: &n})
	tc := NewTiered(NewL0(), NewL1(10, time.Minute, nil), nil, time.Minute, time.Minute, 0.0, logger)

	for i := 0; i < 50; i++ {
		tc.debugEvent("cache_hit", "k")
	}

	require.Equal(t, int32(0), atomic.LoadInt32(&n), "samplingRate=0 must suppress every debug event")
}

func TestDebugEvent_FullSamplingRateAlwaysLogs(t *testing.T) {
	var n int32
	logger := zap.New(countingCore{n: &n})
	tc := NewTiered(NewL0(), NewL1(10, time.Minute, nil), nil, time.Minute, time.Minute, 1.0, logger)

	for i := 0; i < 50; i++ {
		tc.debugEvent("cache_hit", "k")
	}

	require.Equal(t, int32(50), atomic.LoadInt32(&n), "samplingRate=1 must log every debug event")
}
