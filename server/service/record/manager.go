package record

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hrygo/rosterly/store"
)

// DefaultManagerRate applies when a manager is created without a rate.
const DefaultManagerRate = 37.0

type CreateManagerRequest struct {
	FirstName   string
	LastName    string
	Username    string
	Email       string
	Password    string
	DefaultRate *float64
}

type ManagerService struct {
	store *store.Store
}

func NewManagerService(store *store.Store) *ManagerService {
	return &ManagerService{store: store}
}

// Create stores a manager with a bcrypt hash of the password.
func (s *ManagerService) Create(ctx context.Context, req *CreateManagerRequest) (*store.Manager, error) {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("username and email are required: %w", ErrInvalidArgument)
	}
	if req.Password == "" {
		return nil, fmt.Errorf("password is required: %w", ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rate := DefaultManagerRate
	if req.DefaultRate != nil {
		rate = *req.DefaultRate
	}

	manager, err := s.store.CreateManager(ctx, &store.Manager{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		DefaultRate:  rate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create manager: %w", err)
	}
	slog.Info("manager created", "id", manager.ID)
	return manager, nil
}

func (s *ManagerService) List(ctx context.Context, page Page) ([]*store.Manager, error) {
	page = page.normalize()
	list, err := s.store.ListManagers(ctx, &store.FindManager{Offset: page.Offset, Limit: page.Limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list managers: %w", err)
	}
	return list, nil
}

func (s *ManagerService) Get(ctx context.Context, id uuid.UUID) (*store.Manager, error) {
	manager, err := s.store.GetManager(ctx, &store.FindManager{ID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to get manager: %w", err)
	}
	if manager == nil {
		return nil, fmt.Errorf("manager %s: %w", id, store.ErrNotFound)
	}
	return manager, nil
}

// CheckPassword reports whether password matches the manager's stored hash.
func CheckPassword(manager *store.Manager, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(manager.PasswordHash), []byte(password)) == nil
}
