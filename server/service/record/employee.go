package record

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hrygo/rosterly/server/event"
	"github.com/hrygo/rosterly/store"
)

type CreateEmployeeRequest struct {
	ManagerID   uuid.UUID
	FirstName   string
	LastName    string
	Nickname    string
	Mobile      string
	Email       string
	DefaultRate *float64
}

// EmployeeFilter narrows a listing. Name and email fields are case-insensitive substrings.
type EmployeeFilter struct {
	ManagerID *uuid.UUID
	FirstName *string
	LastName  *string
	Email     *string
	Nickname  *string
	Page
}

type EmployeeService struct {
	store     *store.Store
	publisher Publisher
}

func NewEmployeeService(store *store.Store, publisher Publisher) *EmployeeService {
	return &EmployeeService{store: store, publisher: publisher}
}

// Create commits the employee, then publishes EmployeeCreated.
// The returned employee has no embedding yet unless an inline handler has already run.
func (s *EmployeeService) Create(ctx context.Context, req *CreateEmployeeRequest) (*store.Employee, error) {
	if req.ManagerID == uuid.Nil || req.Email == "" {
		return nil, fmt.Errorf("manager and email are required: %w", ErrInvalidArgument)
	}

	employee, err := s.store.CreateEmployee(ctx, &store.Employee{
		ManagerID:   req.ManagerID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Nickname:    req.Nickname,
		Mobile:      req.Mobile,
		Email:       req.Email,
		DefaultRate: req.DefaultRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	slog.Info("employee created", "id", employee.ID, "manager_id", employee.ManagerID)

	if s.publisher != nil {
		s.publisher.Publish(ctx, event.NewEmployeeCreated(
			employee.ID, employee.FirstName, employee.LastName, employee.Email, employee.Mobile))
	}
	return employee, nil
}

func (s *EmployeeService) List(ctx context.Context, page Page) ([]*store.Employee, error) {
	return s.Find(ctx, &EmployeeFilter{Page: page})
}

func (s *EmployeeService) Get(ctx context.Context, id uuid.UUID) (*store.Employee, error) {
	employee, err := s.store.GetEmployee(ctx, &store.FindEmployee{ID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if employee == nil {
		return nil, fmt.Errorf("employee %s: %w", id, store.ErrNotFound)
	}
	return employee, nil
}

func (s *EmployeeService) Find(ctx context.Context, filter *EmployeeFilter) ([]*store.Employee, error) {
	page := filter.Page.normalize()
	list, err := s.store.ListEmployees(ctx, &store.FindEmployee{
		ManagerID:         filter.ManagerID,
		FirstNameContains: nonEmpty(filter.FirstName),
		LastNameContains:  nonEmpty(filter.LastName),
		EmailContains:     nonEmpty(filter.Email),
		NicknameContains:  nonEmpty(filter.Nickname),
		Offset:            page.Offset,
		Limit:             page.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return list, nil
}

// SearchText matches q against first name, last name and nickname.
func (s *EmployeeService) SearchText(ctx context.Context, q string, managerID *uuid.UUID) ([]*store.Employee, error) {
	if q == "" {
		return nil, fmt.Errorf("query is required: %w", ErrInvalidArgument)
	}
	list, err := s.store.ListEmployees(ctx, &store.FindEmployee{
		ManagerID: managerID,
		Text:      &q,
		Limit:     textSearchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search employees: %w", err)
	}
	return list, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
