package v1

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hrygo/rosterly/server/service/record"
	"github.com/hrygo/rosterly/store"
)

type CreateClientRequest struct {
	ManagerID         uuid.UUID `json:"manager_id"`
	ClientName        string    `json:"client_name"`
	Mobile            string    `json:"mobile"`
	Email             string    `json:"email"`
	ClientDescription string    `json:"client_description"`
	DefaultRate       *float64  `json:"default_rate"`
}

type Client struct {
	ID                uuid.UUID `json:"id"`
	ManagerID         uuid.UUID `json:"manager_id"`
	ClientName        string    `json:"client_name"`
	Mobile            string    `json:"mobile"`
	Email             string    `json:"email"`
	ClientDescription string    `json:"client_description"`
	DefaultRate       *float64  `json:"default_rate"`
	HasEmbedding      bool      `json:"has_embedding"`
	CreatedTs         int64     `json:"created_ts"`
	UpdatedTs         int64     `json:"updated_ts"`
}

type ClientSearchResult struct {
	Client
	SimilarityScore float64 `json:"similarity_score"`
	Distance        float64 `json:"distance"`
}

func convertClientFromStore(c *store.Client) *Client {
	return &Client{
		ID:                c.ID,
		ManagerID:         c.ManagerID,
		ClientName:        c.ClientName,
		Mobile:            c.Mobile,
		Email:             c.Email,
		ClientDescription: c.ClientDescription,
		DefaultRate:       c.DefaultRate,
		HasEmbedding:      c.Embedding != nil,
		CreatedTs:         c.CreatedTs,
		UpdatedTs:         c.UpdatedTs,
	}
}

func convertClients(list []*store.Client) []*Client {
	out := make([]*Client, 0, len(list))
	for _, c := range list {
		out = append(out, convertClientFromStore(c))
	}
	return out
}

func (s *APIV1Service) CreateClient(c echo.Context) error {
	var req CreateClientRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	client, err := s.Clients.Create(c.Request().Context(), &record.CreateClientRequest{
		ManagerID:         req.ManagerID,
		ClientName:        req.ClientName,
		Mobile:            req.Mobile,
		Email:             req.Email,
		ClientDescription: req.ClientDescription,
		DefaultRate:       req.DefaultRate,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, convertClientFromStore(client))
}

func (s *APIV1Service) ListClients(c echo.Context) error {
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := s.Clients.List(c.Request().Context(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertClients(list))
}

func (s *APIV1Service) GetClient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	client, err := s.Clients.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertClientFromStore(client))
}

func (s *APIV1Service) FilterClients(c echo.Context) error {
	managerID, err := queryUUID(c, "manager_id")
	if err != nil {
		return writeError(c, err)
	}
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := s.Clients.Find(c.Request().Context(), &record.ClientFilter{
		ManagerID:         managerID,
		ClientName:        queryString(c, "client_name"),
		Email:             queryString(c, "email"),
		Mobile:            queryString(c, "mobile"),
		ClientDescription: queryString(c, "client_description"),
		Page:              page,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertClients(list))
}

func (s *APIV1Service) SearchClientsText(c echo.Context) error {
	managerID, err := queryUUID(c, "manager_id")
	if err != nil {
		return writeError(c, err)
	}
	list, err := s.Clients.SearchText(c.Request().Context(), c.QueryParam("q"), managerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertClients(list))
}

func (s *APIV1Service) SearchClients(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return writeError(c, err)
	}
	results, err := s.ClientSearch.Search(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*ClientSearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, &ClientSearchResult{
			Client:          *convertClientFromStore(r.Entity),
			SimilarityScore: r.SimilarityScore,
			Distance:        r.Distance,
		})
	}
	return c.JSON(http.StatusOK, out)
}
