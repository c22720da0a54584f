package store

import (
	"context"

	"github.com/google/uuid"
)

// Shift is a block of work an employee does for a client.
type Shift struct {
	ID         uuid.UUID
	ManagerID  uuid.UUID
	ClientID   uuid.UUID
	EmployeeID uuid.UUID
	StartTs    int64
	EndTs      int64
	IsPaid     bool
	CreatedTs  int64
	UpdatedTs  int64

	// Rates of the referenced records, filled by ListShifts.
	ClientRate   *float64
	EmployeeRate *float64
	ManagerRate  *float64
}

// FindShift is the find condition for shifts.
type FindShift struct {
	ID         *uuid.UUID
	ManagerID  *uuid.UUID
	ClientID   *uuid.UUID
	EmployeeID *uuid.UUID
	IsPaid     *bool

	// Shifts overlapping [FromTs, ToTs). Either bound may be nil.
	FromTs *int64
	ToTs   *int64

	Offset int
	Limit  int
}

func (s *Store) CreateShift(ctx context.Context, create *Shift) (*Shift, error) {
	return s.driver.CreateShift(ctx, create)
}

func (s *Store) ListShifts(ctx context.Context, find *FindShift) ([]*Shift, error) {
	return s.driver.ListShifts(ctx, find)
}

// GetShift returns the first shift matching find, or nil when there is none.
func (s *Store) GetShift(ctx context.Context, find *FindShift) (*Shift, error) {
	find.Limit = 1
	list, err := s.driver.ListShifts(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}
