package v1

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hrygo/rosterly/server/service/record"
)

type CreateShiftRequest struct {
	ManagerID  uuid.UUID `json:"manager_id"`
	ClientID   uuid.UUID `json:"client_id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	StartTs    int64     `json:"start_ts"`
	EndTs      int64     `json:"end_ts"`
	IsPaid     bool      `json:"is_paid"`
}

type Shift struct {
	ID         uuid.UUID `json:"id"`
	ManagerID  uuid.UUID `json:"manager_id"`
	ClientID   uuid.UUID `json:"client_id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	StartTs    int64     `json:"start_ts"`
	EndTs      int64     `json:"end_ts"`
	IsPaid     bool      `json:"is_paid"`
	// Rate is resolved from client, employee and manager rates.
	Rate      float64 `json:"rate"`
	CreatedTs int64   `json:"created_ts"`
	UpdatedTs int64   `json:"updated_ts"`
}

func convertShift(s *record.RatedShift) *Shift {
	return &Shift{
		ID:         s.ID,
		ManagerID:  s.ManagerID,
		ClientID:   s.ClientID,
		EmployeeID: s.EmployeeID,
		StartTs:    s.StartTs,
		EndTs:      s.EndTs,
		IsPaid:     s.IsPaid,
		Rate:       s.Rate,
		CreatedTs:  s.CreatedTs,
		UpdatedTs:  s.UpdatedTs,
	}
}

func convertShifts(list []*record.RatedShift) []*Shift {
	out := make([]*Shift, 0, len(list))
	for _, s := range list {
		out = append(out, convertShift(s))
	}
	return out
}

func (s *APIV1Service) CreateShift(c echo.Context) error {
	var req CreateShiftRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	shift, err := s.Shifts.Create(c.Request().Context(), &record.CreateShiftRequest{
		ManagerID:  req.ManagerID,
		ClientID:   req.ClientID,
		EmployeeID: req.EmployeeID,
		StartTs:    req.StartTs,
		EndTs:      req.EndTs,
		IsPaid:     req.IsPaid,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, convertShift(shift))
}

// ListShifts lists every shift, or one manager's when manager_id is given.
func (s *APIV1Service) ListShifts(c echo.Context) error {
	managerID, err := queryUUID(c, "manager_id")
	if err != nil {
		return writeError(c, err)
	}
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}

	var list []*record.RatedShift
	if managerID != nil {
		list, err = s.Shifts.ListByManager(c.Request().Context(), *managerID, page)
	} else {
		list, err = s.Shifts.List(c.Request().Context(), page)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertShifts(list))
}

func (s *APIV1Service) FilterShifts(c echo.Context) error {
	filter := &record.ShiftFilter{}
	var err error
	if filter.ManagerID, err = queryUUID(c, "manager_id"); err != nil {
		return writeError(c, err)
	}
	if filter.EmployeeID, err = queryUUID(c, "employee_id"); err != nil {
		return writeError(c, err)
	}
	if filter.ClientID, err = queryUUID(c, "client_id"); err != nil {
		return writeError(c, err)
	}
	if filter.IsPaid, err = queryBool(c, "is_paid"); err != nil {
		return writeError(c, err)
	}
	if filter.FromTs, err = queryInt64(c, "from_ts"); err != nil {
		return writeError(c, err)
	}
	if filter.ToTs, err = queryInt64(c, "to_ts"); err != nil {
		return writeError(c, err)
	}
	if filter.Page, err = queryPage(c); err != nil {
		return writeError(c, err)
	}

	list, err := s.Shifts.Find(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertShifts(list))
}
