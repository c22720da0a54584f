package record

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hrygo/rosterly/server/service/rate"
	"github.com/hrygo/rosterly/store"
)

type CreateShiftRequest struct {
	ManagerID  uuid.UUID
	ClientID   uuid.UUID
	EmployeeID uuid.UUID
	StartTs    int64
	EndTs      int64
	IsPaid     bool
}

// ShiftFilter narrows a listing. FromTs and ToTs select shifts overlapping the window.
type ShiftFilter struct {
	ManagerID  *uuid.UUID
	EmployeeID *uuid.UUID
	ClientID   *uuid.UUID
	IsPaid     *bool
	FromTs     *int64
	ToTs       *int64
	Page
}

// RatedShift is a shift with the rate resolved from its client, employee and manager.
type RatedShift struct {
	*store.Shift
	Rate float64
}

type ShiftService struct {
	store *store.Store
}

func NewShiftService(store *store.Store) *ShiftService {
	return &ShiftService{store: store}
}

func (s *ShiftService) Create(ctx context.Context, req *CreateShiftRequest) (*RatedShift, error) {
	if req.EndTs <= req.StartTs {
		return nil, fmt.Errorf("shift must end after it starts: %w", ErrInvalidArgument)
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	shift, err := s.store.CreateShift(ctx, &store.Shift{
		ManagerID:  req.ManagerID,
		ClientID:   req.ClientID,
		EmployeeID: req.EmployeeID,
		StartTs:    req.StartTs,
		EndTs:      req.EndTs,
		IsPaid:     req.IsPaid,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}

	// Read back to pick up the joined rates.
	created, err := s.store.GetShift(ctx, &store.FindShift{ID: &shift.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("shift %s: %w", shift.ID, store.ErrNotFound)
	}
	return rated(created), nil
}

func (s *ShiftService) checkReferences(ctx context.Context, req *CreateShiftRequest) error {
	manager, err := s.store.GetManager(ctx, &store.FindManager{ID: &req.ManagerID})
	if err != nil {
		return fmt.Errorf("failed to get manager: %w", err)
	}
	if manager == nil {
		return fmt.Errorf("manager %s: %w", req.ManagerID, store.ErrNotFound)
	}
	employee, err := s.store.GetEmployee(ctx, &store.FindEmployee{ID: &req.EmployeeID})
	if err != nil {
		return fmt.Errorf("failed to get employee: %w", err)
	}
	if employee == nil {
		return fmt.Errorf("employee %s: %w", req.EmployeeID, store.ErrNotFound)
	}
	client, err := s.store.GetClient(ctx, &store.FindClient{ID: &req.ClientID})
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("client %s: %w", req.ClientID, store.ErrNotFound)
	}
	return nil
}

func (s *ShiftService) List(ctx context.Context, page Page) ([]*RatedShift, error) {
	return s.Find(ctx, &ShiftFilter{Page: page})
}

func (s *ShiftService) ListByManager(ctx context.Context, managerID uuid.UUID, page Page) ([]*RatedShift, error) {
	return s.Find(ctx, &ShiftFilter{ManagerID: &managerID, Page: page})
}

func (s *ShiftService) Find(ctx context.Context, filter *ShiftFilter) ([]*RatedShift, error) {
	page := filter.Page.normalize()
	list, err := s.store.ListShifts(ctx, &store.FindShift{
		ManagerID:  filter.ManagerID,
		EmployeeID: filter.EmployeeID,
		ClientID:   filter.ClientID,
		IsPaid:     filter.IsPaid,
		FromTs:     filter.FromTs,
		ToTs:       filter.ToTs,
		Offset:     page.Offset,
		Limit:      page.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	out := make([]*RatedShift, 0, len(list))
	for _, shift := range list {
		out = append(out, rated(shift))
	}
	return out, nil
}

func rated(shift *store.Shift) *RatedShift {
	return &RatedShift{
		Shift: shift,
		Rate:  rate.Resolve(shift.ClientRate, shift.EmployeeRate, shift.ManagerRate),
	}
}
