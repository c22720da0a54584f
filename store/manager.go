package store

import (
	"context"

	"github.com/google/uuid"
)

// Manager owns employees, clients and shifts.
type Manager struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Username     string
	Email        string
	PasswordHash string
	// DefaultRate is the last fallback when resolving a shift rate.
	DefaultRate float64
	CreatedTs   int64
	UpdatedTs   int64
}

// FindManager is the find condition for managers.
type FindManager struct {
	ID       *uuid.UUID
	Email    *string
	Username *string

	Offset int
	Limit  int
}

func (s *Store) CreateManager(ctx context.Context, create *Manager) (*Manager, error) {
	return s.driver.CreateManager(ctx, create)
}

func (s *Store) ListManagers(ctx context.Context, find *FindManager) ([]*Manager, error) {
	return s.driver.ListManagers(ctx, find)
}

// GetManager returns the first manager matching find, or nil when there is none.
func (s *Store) GetManager(ctx context.Context, find *FindManager) (*Manager, error) {
	find.Limit = 1
	list, err := s.driver.ListManagers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}
