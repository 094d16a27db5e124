package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// CacheKeyBuilder composes cache key components into a stable hash, kept
// from the teacher's own key-builder shape. High-volume SearchContext and
// provider-result keys use xxhash (BuildFast); the low-cardinality
// canonical-query key keeps MD5 (Build), matching the teacher's existing
// choice of MD5 for cache keys. Landmark cache keys are plain formatted
// strings and do not go through this builder.
type CacheKeyBuilder struct {
	components []any
}

// NewCacheKeyBuilder starts an empty key builder.
func NewCacheKeyBuilder() *CacheKeyBuilder {
	return &CacheKeyBuilder{components: make([]any, 0, 8)}
}

// Add appends one named component to the key.
func (b *CacheKeyBuilder) Add(key string, value any) *CacheKeyBuilder {
	b.components = append(b.components, map[string]any{key: value})
	return b
}

func (b *CacheKeyBuilder) marshal() ([]byte, error) {
	return json.Marshal(b.components)
}

// Build returns an MD5-based hex digest of the accumulated components.
func (b *CacheKeyBuilder) Build() (string, error) {
	data, err := b.marshal()
	if err != nil {
		return "", fmt.Errorf("marshal cache key components: %w", err)
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// BuildFast returns an xxhash-based hex digest, cheaper than Build for the
// high-volume SearchContext/provider-result keys.
func (b *CacheKeyBuilder) BuildFast() (string, error) {
	data, err := b.marshal()
	if err != nil {
		return "", fmt.Errorf("marshal cache key components: %w", err)
	}
	sum := xxhash.Sum64(data)
	return fmt.Sprintf("%016x", sum), nil
}
