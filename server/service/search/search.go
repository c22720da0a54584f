// Package search ranks enriched records by semantic similarity to a query text.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/hrygo/rosterly/internal/metrics"
	"github.com/hrygo/rosterly/plugin/ai"
	"github.com/hrygo/rosterly/store"
)

const (
	DefaultLimit = 5
	MaxLimit     = 100
)

var (
	// ErrSearchUnavailable means no query embedding could be produced.
	ErrSearchUnavailable = errors.New("search temporarily unavailable")
	// ErrEmptyQuery is returned for a blank query text.
	ErrEmptyQuery = errors.New("query text is required")
)

// Result is a ranked entity. SimilarityScore is 1 - Distance.
type Result[T any] struct {
	Entity          *T
	SimilarityScore float64
	Distance        float64
}

// NearestFunc returns up to limit entities ordered by ascending cosine distance to vector.
type NearestFunc[T any] func(ctx context.Context, vector []float32, limit int) ([]*store.Scored[T], error)

// Service answers similarity queries for one entity kind.
type Service[T any] struct {
	kind          store.EntityKind
	embedder      ai.EmbeddingService
	nearest       NearestFunc[T]
	minSimilarity *float64
}

// Option configures a Service.
type Option func(*options)

type options struct {
	minSimilarity *float64
}

// WithMinSimilarity drops results scoring below min. Nil keeps plain top-k.
func WithMinSimilarity(min *float64) Option {
	return func(o *options) { o.minSimilarity = min }
}

// New builds a Service. A nil embedder makes every search fail with ErrSearchUnavailable.
func New[T any](kind store.EntityKind, embedder ai.EmbeddingService, nearest NearestFunc[T], opts ...Option) *Service[T] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return &Service[T]{
		kind:          kind,
		embedder:      embedder,
		nearest:       nearest,
		minSimilarity: o.minSimilarity,
	}
}

func NewEmployeeService(embedder ai.EmbeddingService, s *store.Store, opts ...Option) *Service[store.Employee] {
	return New(store.EntityKindEmployee, embedder, s.NearestEmployees, opts...)
}

func NewClientService(embedder ai.EmbeddingService, s *store.Store, opts ...Option) *Service[store.Client] {
	return New(store.EntityKindClient, embedder, s.NearestClients, opts...)
}

// NormalizeLimit applies the default and the upper bound to a requested limit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// Search embeds queryText and returns at most limit entities, closest first.
// Entities without an embedding are never returned.
func (s *Service[T]) Search(ctx context.Context, queryText string, limit int) ([]*Result[T], error) {
	if strings.TrimSpace(queryText) == "" {
		s.observe("invalid")
		return nil, ErrEmptyQuery
	}
	if s.embedder == nil {
		s.observe("unavailable")
		return nil, ErrSearchUnavailable
	}
	limit = NormalizeLimit(limit)

	vector, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		slog.Warn("failed to embed search query", "kind", s.kind, "error", err)
		s.observe("unavailable")
		return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}

	scored, err := s.nearest(ctx, vector, limit)
	if errors.Is(err, store.ErrZeroVector) {
		slog.Warn("provider returned a zero query vector", "kind", s.kind)
		s.observe("unavailable")
		return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}
	if err != nil {
		s.observe("error")
		return nil, fmt.Errorf("nearest %s: %w", s.kind, err)
	}

	results := make([]*Result[T], 0, len(scored))
	for _, sc := range scored {
		// A zero-norm row has no distance and cannot be encoded.
		if math.IsNaN(sc.Distance) {
			continue
		}
		score := 1 - sc.Distance
		if s.minSimilarity != nil && score < *s.minSimilarity {
			continue
		}
		results = append(results, &Result[T]{
			Entity:          sc.Entity,
			SimilarityScore: score,
			Distance:        sc.Distance,
		})
	}
	s.observe("success")
	return results, nil
}

func (s *Service[T]) observe(status string) {
	metrics.SearchTotal.WithLabelValues(string(s.kind), status).Inc()
}
