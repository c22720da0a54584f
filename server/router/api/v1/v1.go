package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hrygo/rosterly/internal/profile"
	apierrors "github.com/hrygo/rosterly/server/internal/errors"
	"github.com/hrygo/rosterly/server/internal/observability"
	"github.com/hrygo/rosterly/server/middleware"
	"github.com/hrygo/rosterly/server/service/record"
	"github.com/hrygo/rosterly/server/service/search"
	"github.com/hrygo/rosterly/store"
)

// APIV1Service serves the JSON API under /api/v1. It only parses and serialises;
// behaviour lives in the record and search services.
type APIV1Service struct {
	Profile *profile.Profile

	Managers  *record.ManagerService
	Employees *record.EmployeeService
	Clients   *record.ClientService
	Shifts    *record.ShiftService

	EmployeeSearch *search.Service[store.Employee]
	ClientSearch   *search.Service[store.Client]

	searchLimiter *middleware.RateLimiter
}

func NewAPIV1Service(
	profile *profile.Profile,
	store *store.Store,
	publisher record.Publisher,
	employeeSearch *search.Service[store.Employee],
	clientSearch *search.Service[store.Client],
) *APIV1Service {
	service := &APIV1Service{
		Profile:        profile,
		Managers:       record.NewManagerService(store),
		Employees:      record.NewEmployeeService(store, publisher),
		Clients:        record.NewClientService(store, publisher),
		Shifts:         record.NewShiftService(store),
		EmployeeSearch: employeeSearch,
		ClientSearch:   clientSearch,
	}
	if profile.SearchRateLimit > 0 {
		service.searchLimiter = middleware.NewRateLimiter(profile.SearchRateLimit)
	}
	return service
}

// Register mounts every route on e.
func (s *APIV1Service) Register(e *echo.Echo) {
	e.GET("/healthz", s.healthz)

	g := e.Group("/api/v1")

	g.POST("/managers", s.CreateManager)
	g.GET("/managers", s.ListManagers)
	g.GET("/managers/:id", s.GetManager)

	var searchMiddleware []echo.MiddlewareFunc
	if s.searchLimiter != nil {
		searchMiddleware = append(searchMiddleware, s.searchLimiter.Middleware(func(c echo.Context) error {
			return writeError(c, apierrors.RateLimitExceeded("too many search requests"))
		}))
	}

	g.POST("/employees", s.CreateEmployee)
	g.GET("/employees", s.ListEmployees)
	g.GET("/employees/filter", s.FilterEmployees)
	g.GET("/employees/search/text", s.SearchEmployeesText)
	g.GET("/employees/search", s.SearchEmployees, searchMiddleware...)
	g.GET("/employees/:id", s.GetEmployee)

	g.POST("/clients", s.CreateClient)
	g.GET("/clients", s.ListClients)
	g.GET("/clients/filter", s.FilterClients)
	g.GET("/clients/search/text", s.SearchClientsText)
	g.GET("/clients/search", s.SearchClients, searchMiddleware...)
	g.GET("/clients/:id", s.GetClient)

	g.POST("/shifts", s.CreateShift)
	g.GET("/shifts", s.ListShifts)
	g.GET("/shifts/filter", s.FilterShifts)
}

// SweepLimiters drops idle per-client limiters. Called periodically by the server.
func (s *APIV1Service) SweepLimiters() {
	if s.searchLimiter != nil {
		s.searchLimiter.Sweep()
	}
}

func (*APIV1Service) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    apierrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

func writeError(c echo.Context, err error) error {
	apiErr := apierrors.FromError(err)
	status := apiErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		observability.Logger(c.Request().Context()).Error("request failed",
			slog.String(observability.LogFieldErrorCode, string(apiErr.Code)),
			slog.Any("error", err))
	}
	return c.JSON(status, ErrorResponse{Code: apiErr.Code, Message: apiErr.Message})
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apierrors.InvalidArgument("invalid id")
	}
	return id, nil
}

func queryUUID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierrors.InvalidArgument("invalid " + name)
	}
	return &id, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierrors.InvalidArgument("invalid " + name)
	}
	return v, nil
}

func queryInt64(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apierrors.InvalidArgument("invalid " + name)
	}
	return &v, nil
}

func queryBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apierrors.InvalidArgument("invalid " + name)
	}
	return &v, nil
}

func queryString(c echo.Context, name string) *string {
	if raw := c.QueryParam(name); raw != "" {
		return &raw
	}
	return nil
}

func queryPage(c echo.Context) (record.Page, error) {
	offset, err := queryInt(c, "offset")
	if err != nil {
		return record.Page{}, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return record.Page{}, err
	}
	return record.Page{Offset: offset, Limit: limit}, nil
}

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "invalid request body")
	}
	return nil
}
