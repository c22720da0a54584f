package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// EntityKind names an enrichable entity type.
type EntityKind string

const (
	EntityKindEmployee EntityKind = "employee"
	EntityKindClient   EntityKind = "client"
)

// Scored is an entity together with its cosine distance to a query vector.
type Scored[T any] struct {
	Entity   *T
	Distance float64
}

// UpdateEmbedding sets the embedding of one entity without touching its other columns.
func (s *Store) UpdateEmbedding(ctx context.Context, kind EntityKind, id uuid.UUID, embedding []float32) error {
	if err := s.checkVector(embedding); err != nil {
		return err
	}
	switch kind {
	case EntityKindEmployee, EntityKindClient:
	default:
		return errors.Errorf("unknown entity kind %q", kind)
	}
	return s.driver.UpdateEmbedding(ctx, kind, id, embedding)
}

// NearestEmployees returns the limit employees closest to vector.
func (s *Store) NearestEmployees(ctx context.Context, vector []float32, limit int) ([]*Scored[Employee], error) {
	if err := s.checkVector(vector); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []*Scored[Employee]{}, nil
	}
	return s.driver.NearestEmployees(ctx, vector, limit)
}

// NearestClients returns the limit clients closest to vector.
func (s *Store) NearestClients(ctx context.Context, vector []float32, limit int) ([]*Scored[Client], error) {
	if err := s.checkVector(vector); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []*Scored[Client]{}, nil
	}
	return s.driver.NearestClients(ctx, vector, limit)
}

func (s *Store) checkVector(vector []float32) error {
	if len(vector) != s.dimensions {
		return errors.Wrapf(ErrDimensionMismatch, "got %d, want %d", len(vector), s.dimensions)
	}
	for _, x := range vector {
		if x != 0 {
			return nil
		}
	}
	return ErrZeroVector
}
