package cache

import "golang.org/x/sync/singleflight"

// L0 is the in-flight single-flight dedupe tier: concurrent callers for the
// same key attach to one pending fetch rather than issuing their own.
type L0 struct {
	group singleflight.Group
}

// NewL0 constructs an empty in-flight tier.
func NewL0() *L0 {
	return &L0{}
}

// Do runs fn at most once per concurrently-outstanding key; every caller
// sharing that key receives the same result. The group entry for key is
// cleared as soon as fn returns (singleflight's own Forget-on-completion
// behaviour), matching the "cleared in the terminal branch" contract.
func (l *L0) Do(key string, fn func() (any, error)) (any, error, bool) {
	v, err, shared := l.group.Do(key, fn)
	return v, err, shared
}
