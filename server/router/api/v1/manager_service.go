package v1

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hrygo/rosterly/server/service/record"
	"github.com/hrygo/rosterly/store"
)

type CreateManagerRequest struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	DefaultRate *float64 `json:"default_rate"`
}

// Manager never carries the password hash.
type Manager struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DefaultRate float64   `json:"default_rate"`
	CreatedTs   int64     `json:"created_ts"`
	UpdatedTs   int64     `json:"updated_ts"`
}

func convertManagerFromStore(m *store.Manager) *Manager {
	return &Manager{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Username:    m.Username,
		Email:       m.Email,
		DefaultRate: m.DefaultRate,
		CreatedTs:   m.CreatedTs,
		UpdatedTs:   m.UpdatedTs,
	}
}

func (s *APIV1Service) CreateManager(c echo.Context) error {
	var req CreateManagerRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	manager, err := s.Managers.Create(c.Request().Context(), &record.CreateManagerRequest{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DefaultRate: req.DefaultRate,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, convertManagerFromStore(manager))
}

func (s *APIV1Service) ListManagers(c echo.Context) error {
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := s.Managers.List(c.Request().Context(), page)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*Manager, 0, len(list))
	for _, m := range list {
		out = append(out, convertManagerFromStore(m))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *APIV1Service) GetManager(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	manager, err := s.Managers.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertManagerFromStore(manager))
}
