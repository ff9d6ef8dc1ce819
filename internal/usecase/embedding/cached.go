package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/metrics"
)

// CachedEmbedder memoizes embeddings in process memory, keyed by the SHA-256
// of the input text. Eviction is FIFO once maxEntries is reached; documents
// re-chunk deterministically, so repeated texts hit often during re-ingestion.
type CachedEmbedder struct {
	inner      domain.Embedder
	maxEntries int

	mu      sync.Mutex
	entries map[string][]float32
	order   []string // insertion order for eviction
}

const defaultMaxEntries = 1024

// NewCached creates a caching decorator holding at most maxEntries vectors.
func NewCached(inner domain.Embedder, maxEntries int) *CachedEmbedder {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &CachedEmbedder{
		inner:      inner,
		maxEntries: maxEntries,
		entries:    make(map[string][]float32, maxEntries),
	}
}

// Embed returns a cached embedding or calls the inner embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := cacheKey(text)

	c.mu.Lock()
	vec, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
		out := make([]float32, len(vec))
		copy(out, vec)
		return domain.EmbeddingResult{Embedding: out}, nil
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	c.mu.Lock()
	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		stored := make([]float32, len(result.Embedding))
		copy(stored, result.Embedding)
		c.entries[key] = stored
		c.order = append(c.order, key)
	}
	c.mu.Unlock()

	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
