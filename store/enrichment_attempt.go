package store

import (
	"context"

	"github.com/google/uuid"
)

// EnrichmentStatus is the result of one enrichment attempt.
type EnrichmentStatus string

const (
	EnrichmentSucceeded EnrichmentStatus = "succeeded"
	EnrichmentFailed    EnrichmentStatus = "failed"
)

// EnrichmentAttempt records one try at embedding an entity.
type EnrichmentAttempt struct {
	ID         int64
	Kind       EntityKind
	EntityID   uuid.UUID
	Status     EnrichmentStatus
	Error      string
	DurationMs int64
	CreatedTs  int64
}

// FindEnrichmentAttempt is the find condition for enrichment attempts.
type FindEnrichmentAttempt struct {
	Kind     *EntityKind
	EntityID *uuid.UUID
	Status   *EnrichmentStatus
	Limit    int
}

func (s *Store) CreateEnrichmentAttempt(ctx context.Context, create *EnrichmentAttempt) (*EnrichmentAttempt, error) {
	return s.driver.CreateEnrichmentAttempt(ctx, create)
}

func (s *Store) ListEnrichmentAttempts(ctx context.Context, find *FindEnrichmentAttempt) ([]*EnrichmentAttempt, error) {
	return s.driver.ListEnrichmentAttempts(ctx, find)
}
