package record

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hrygo/rosterly/server/event"
	"github.com/hrygo/rosterly/store"
)

type CreateClientRequest struct {
	ManagerID         uuid.UUID
	ClientName        string
	Mobile            string
	Email             string
	ClientDescription string
	DefaultRate       *float64
}

// ClientFilter narrows a listing. Every text field is a case-insensitive substring.
type ClientFilter struct {
	ManagerID         *uuid.UUID
	ClientName        *string
	Email             *string
	Mobile            *string
	ClientDescription *string
	Page
}

type ClientService struct {
	store     *store.Store
	publisher Publisher
}

func NewClientService(store *store.Store, publisher Publisher) *ClientService {
	return &ClientService{store: store, publisher: publisher}
}

// Create commits the client, then publishes ClientCreated.
func (s *ClientService) Create(ctx context.Context, req *CreateClientRequest) (*store.Client, error) {
	if req.ManagerID == uuid.Nil || req.Email == "" {
		return nil, fmt.Errorf("manager and email are required: %w", ErrInvalidArgument)
	}

	client, err := s.store.CreateClient(ctx, &store.Client{
		ManagerID:         req.ManagerID,
		ClientName:        req.ClientName,
		Mobile:            req.Mobile,
		Email:             req.Email,
		ClientDescription: req.ClientDescription,
		DefaultRate:       req.DefaultRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	slog.Info("client created", "id", client.ID, "manager_id", client.ManagerID)

	if s.publisher != nil {
		s.publisher.Publish(ctx, event.NewClientCreated(
			client.ID, client.ClientName, client.Mobile, client.Email, client.ClientDescription))
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context, page Page) ([]*store.Client, error) {
	return s.Find(ctx, &ClientFilter{Page: page})
}

func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*store.Client, error) {
	client, err := s.store.GetClient(ctx, &store.FindClient{ID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("client %s: %w", id, store.ErrNotFound)
	}
	return client, nil
}

func (s *ClientService) Find(ctx context.Context, filter *ClientFilter) ([]*store.Client, error) {
	page := filter.Page.normalize()
	list, err := s.store.ListClients(ctx, &store.FindClient{
		ManagerID:                 filter.ManagerID,
		ClientNameContains:        nonEmpty(filter.ClientName),
		EmailContains:             nonEmpty(filter.Email),
		MobileContains:            nonEmpty(filter.Mobile),
		ClientDescriptionContains: nonEmpty(filter.ClientDescription),
		Offset:                    page.Offset,
		Limit:                     page.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return list, nil
}

// SearchText matches q against name, email, mobile and description.
func (s *ClientService) SearchText(ctx context.Context, q string, managerID *uuid.UUID) ([]*store.Client, error) {
	if q == "" {
		return nil, fmt.Errorf("query is required: %w", ErrInvalidArgument)
	}
	list, err := s.store.ListClients(ctx, &store.FindClient{
		ManagerID: managerID,
		Text:      &q,
		Limit:     textSearchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	return list, nil
}
