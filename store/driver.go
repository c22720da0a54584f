package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Manager model related methods.
	CreateManager(ctx context.Context, create *Manager) (*Manager, error)
	ListManagers(ctx context.Context, find *FindManager) ([]*Manager, error)

	// Employee model related methods.
	CreateEmployee(ctx context.Context, create *Employee) (*Employee, error)
	ListEmployees(ctx context.Context, find *FindEmployee) ([]*Employee, error)

	// Client model related methods.
	CreateClient(ctx context.Context, create *Client) (*Client, error)
	ListClients(ctx context.Context, find *FindClient) ([]*Client, error)

	// UpdateEmbedding replaces the embedding of a single entity.
	// It returns ErrNotFound when no entity of that kind has the id.
	UpdateEmbedding(ctx context.Context, kind EntityKind, id uuid.UUID, embedding []float32) error

	// NearestEmployees returns up to limit employees with an embedding,
	// ordered by ascending cosine distance to the vector, ties by id.
	NearestEmployees(ctx context.Context, vector []float32, limit int) ([]*Scored[Employee], error)
	// NearestClients is NearestEmployees for clients.
	NearestClients(ctx context.Context, vector []float32, limit int) ([]*Scored[Client], error)

	// Shift model related methods.
	CreateShift(ctx context.Context, create *Shift) (*Shift, error)
	ListShifts(ctx context.Context, find *FindShift) ([]*Shift, error)

	// EnrichmentAttempt model related methods.
	CreateEnrichmentAttempt(ctx context.Context, create *EnrichmentAttempt) (*EnrichmentAttempt, error)
	ListEnrichmentAttempts(ctx context.Context, find *FindEnrichmentAttempt) ([]*EnrichmentAttempt, error)
}
