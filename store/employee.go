package store

import (
	"context"

	"github.com/google/uuid"
)

// Employee is an enrichable profile record.
type Employee struct {
	ID        uuid.UUID
	ManagerID uuid.UUID
	FirstName string
	LastName  string
	Nickname  string
	Mobile    string
	Email     string
	// DefaultRate overrides the manager rate when set and non-zero.
	DefaultRate *float64
	// Embedding is nil until enrichment succeeds.
	Embedding []float32
	CreatedTs int64
	UpdatedTs int64
}

// FindEmployee is the find condition for employees.
// The *Contains fields are case-insensitive substring filters.
type FindEmployee struct {
	ID        *uuid.UUID
	ManagerID *uuid.UUID
	Email     *string

	FirstNameContains *string
	LastNameContains  *string
	EmailContains     *string
	NicknameContains  *string
	// Text matches first name, last name or nickname.
	Text *string

	// MissingEmbedding restricts the result to employees not yet enriched.
	MissingEmbedding bool
	// AfterID switches to keyset paging: only ids greater than it, in id order.
	AfterID *uuid.UUID

	Offset int
	Limit  int
}

func (s *Store) CreateEmployee(ctx context.Context, create *Employee) (*Employee, error) {
	return s.driver.CreateEmployee(ctx, create)
}

func (s *Store) ListEmployees(ctx context.Context, find *FindEmployee) ([]*Employee, error) {
	return s.driver.ListEmployees(ctx, find)
}

// GetEmployee returns the first employee matching find, or nil when there is none.
func (s *Store) GetEmployee(ctx context.Context, find *FindEmployee) (*Employee, error) {
	find.Limit = 1
	list, err := s.driver.ListEmployees(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}
