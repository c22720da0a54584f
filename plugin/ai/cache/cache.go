// Package cache memoises query embeddings so repeated searches skip the provider.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hrygo/rosterly/internal/metrics"
	"github.com/hrygo/rosterly/plugin/ai"
)

const (
	DefaultSize = 1000
	DefaultTTL  = 10 * time.Minute
)

// EmbeddingService wraps another ai.EmbeddingService with an expiring LRU.
// Failed calls are never cached.
type EmbeddingService struct {
	next ai.EmbeddingService
	lru  *expirable.LRU[string, []float32]
}

var _ ai.EmbeddingService = (*EmbeddingService)(nil)

// NewEmbeddingService caches up to size vectors for ttl each.
func NewEmbeddingService(next ai.EmbeddingService, size int, ttl time.Duration) *EmbeddingService {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &EmbeddingService{
		next: next,
		lru:  expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

// key hashes the text so long queries don't pin memory.
func key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Embed trims text before both the lookup and the provider call, so the cached
// vector is always the one for the text that was embedded.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	k := key(text)
	if v, ok := s.lru.Get(k); ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
		return clone(v), nil
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	v, err := s.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.lru.Add(k, clone(v))
	return v, nil
}

// EmbedBatch only sends the misses to the wrapped service, in one call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		text = strings.TrimSpace(text)
		if v, ok := s.lru.Get(key(text)); ok {
			metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
			out[i] = clone(v)
			continue
		}
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vectors, err := s.next.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ai.ErrEmbeddingFailed, len(vectors), len(missTexts))
	}
	for j, v := range vectors {
		out[missIdx[j]] = v
		s.lru.Add(key(missTexts[j]), clone(v))
	}
	return out, nil
}

func (s *EmbeddingService) Dimensions() int {
	return s.next.Dimensions()
}

func clone(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
