package v1

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hrygo/rosterly/server/service/record"
	"github.com/hrygo/rosterly/store"
)

type CreateEmployeeRequest struct {
	ManagerID   uuid.UUID `json:"manager_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Nickname    string    `json:"nickname"`
	Mobile      string    `json:"mobile"`
	Email       string    `json:"email"`
	DefaultRate *float64  `json:"default_rate"`
}

// Employee exposes whether an embedding exists, never the vector.
type Employee struct {
	ID           uuid.UUID `json:"id"`
	ManagerID    uuid.UUID `json:"manager_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Nickname     string    `json:"nickname"`
	Mobile       string    `json:"mobile"`
	Email        string    `json:"email"`
	DefaultRate  *float64  `json:"default_rate"`
	HasEmbedding bool      `json:"has_embedding"`
	CreatedTs    int64     `json:"created_ts"`
	UpdatedTs    int64     `json:"updated_ts"`
}

type EmployeeSearchResult struct {
	Employee
	SimilarityScore float64 `json:"similarity_score"`
	Distance        float64 `json:"distance"`
}

func convertEmployeeFromStore(e *store.Employee) *Employee {
	return &Employee{
		ID:           e.ID,
		ManagerID:    e.ManagerID,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		Nickname:     e.Nickname,
		Mobile:       e.Mobile,
		Email:        e.Email,
		DefaultRate:  e.DefaultRate,
		HasEmbedding: e.Embedding != nil,
		CreatedTs:    e.CreatedTs,
		UpdatedTs:    e.UpdatedTs,
	}
}

func convertEmployees(list []*store.Employee) []*Employee {
	out := make([]*Employee, 0, len(list))
	for _, e := range list {
		out = append(out, convertEmployeeFromStore(e))
	}
	return out
}

func (s *APIV1Service) CreateEmployee(c echo.Context) error {
	var req CreateEmployeeRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	employee, err := s.Employees.Create(c.Request().Context(), &record.CreateEmployeeRequest{
		ManagerID:   req.ManagerID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Nickname:    req.Nickname,
		Mobile:      req.Mobile,
		Email:       req.Email,
		DefaultRate: req.DefaultRate,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, convertEmployeeFromStore(employee))
}

func (s *APIV1Service) ListEmployees(c echo.Context) error {
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := s.Employees.List(c.Request().Context(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertEmployees(list))
}

func (s *APIV1Service) GetEmployee(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	employee, err := s.Employees.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertEmployeeFromStore(employee))
}

func (s *APIV1Service) FilterEmployees(c echo.Context) error {
	managerID, err := queryUUID(c, "manager_id")
	if err != nil {
		return writeError(c, err)
	}
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := s.Employees.Find(c.Request().Context(), &record.EmployeeFilter{
		ManagerID: managerID,
		FirstName: queryString(c, "first_name"),
		LastName:  queryString(c, "last_name"),
		Email:     queryString(c, "email"),
		Nickname:  queryString(c, "nickname"),
		Page:      page,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertEmployees(list))
}

func (s *APIV1Service) SearchEmployeesText(c echo.Context) error {
	managerID, err := queryUUID(c, "manager_id")
	if err != nil {
		return writeError(c, err)
	}
	list, err := s.Employees.SearchText(c.Request().Context(), c.QueryParam("q"), managerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertEmployees(list))
}

// SearchEmployees ranks enriched employees by similarity to q.
func (s *APIV1Service) SearchEmployees(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return writeError(c, err)
	}
	results, err := s.EmployeeSearch.Search(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*EmployeeSearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, &EmployeeSearchResult{
			Employee:        *convertEmployeeFromStore(r.Entity),
			SimilarityScore: r.SimilarityScore,
			Distance:        r.Distance,
		})
	}
	return c.JSON(http.StatusOK, out)
}
