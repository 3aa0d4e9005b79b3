// Package cached wraps any Embedder with a ristretto read-through cache.
//
// Embedding is the latency-dominant step of page enrichment and session
// placement, and the same texts recur: a batch inserted under several themes
// re-embeds each theme summary, and retries re-embed whole batches. The
// cache keys on the exact input text.
package cached

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/becomeliminal/memtier/memory"
)

// DefaultMaxEntries bounds the cache when no size is configured.
const DefaultMaxEntries = 4096

// Embedder is a caching memory.Embedder.
type Embedder struct {
	inner memory.Embedder
	cache *ristretto.Cache
}

// New wraps inner with a cache holding up to maxEntries embeddings.
func New(inner memory.Embedder, maxEntries int64) (*Embedder, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &Embedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text, computing and caching it on miss.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if value, ok := e.cache.Get(text); ok {
		return value.([]float32), nil
	}

	embedding, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Set(text, embedding, 1)
	e.cache.Wait()
	return embedding, nil
}

// Dimensions returns the wrapped embedder's vector size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Close stops the cache's internal goroutines.
func (e *Embedder) Close() {
	e.cache.Close()
}
