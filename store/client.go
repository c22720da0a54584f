package store

import (
	"context"

	"github.com/google/uuid"
)

// Client is an enrichable profile record.
type Client struct {
	ID                uuid.UUID
	ManagerID         uuid.UUID
	ClientName        string
	Mobile            string
	Email             string
	ClientDescription string
	// DefaultRate takes precedence over employee and manager rates when set and non-zero.
	DefaultRate *float64
	Embedding   []float32
	CreatedTs   int64
	UpdatedTs   int64
}

// FindClient is the find condition for clients.
type FindClient struct {
	ID        *uuid.UUID
	ManagerID *uuid.UUID
	Email     *string

	ClientNameContains        *string
	EmailContains             *string
	MobileContains            *string
	ClientDescriptionContains *string
	// Text matches name, email, mobile or description.
	Text *string

	MissingEmbedding bool
	// AfterID switches to keyset paging: only ids greater than it, in id order.
	AfterID *uuid.UUID

	Offset int
	Limit  int
}

func (s *Store) CreateClient(ctx context.Context, create *Client) (*Client, error) {
	return s.driver.CreateClient(ctx, create)
}

func (s *Store) ListClients(ctx context.Context, find *FindClient) ([]*Client, error) {
	return s.driver.ListClients(ctx, find)
}

// GetClient returns the first client matching find, or nil when there is none.
func (s *Store) GetClient(ctx context.Context, find *FindClient) (*Client, error) {
	find.Limit = 1
	list, err := s.driver.ListClients(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}
