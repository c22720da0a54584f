package enrichment

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hrygo/rosterly/store"
)

// Outcome describes one enrichment attempt.
type Outcome struct {
	Kind     store.EntityKind
	EntityID uuid.UUID
	Status   store.EnrichmentStatus
	Error    string
	Duration time.Duration
}

func (o Outcome) Succeeded() bool {
	return o.Status == store.EnrichmentSucceeded
}

// Recorder keeps outcomes somewhere an operator can find them.
type Recorder interface {
	Record(ctx context.Context, outcome Outcome)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Outcome) {}

type attemptCreator interface {
	CreateEnrichmentAttempt(ctx context.Context, create *store.EnrichmentAttempt) (*store.EnrichmentAttempt, error)
}

// StoreRecorder writes outcomes to the enrichment_attempt table.
type StoreRecorder struct {
	store attemptCreator
}

func NewStoreRecorder(store attemptCreator) *StoreRecorder {
	return &StoreRecorder{store: store}
}

func (r *StoreRecorder) Record(ctx context.Context, outcome Outcome) {
	// The attempt may have failed on its own deadline; the record still has to land.
	ctx = context.WithoutCancel(ctx)
	_, err := r.store.CreateEnrichmentAttempt(ctx, &store.EnrichmentAttempt{
		Kind:       outcome.Kind,
		EntityID:   outcome.EntityID,
		Status:     outcome.Status,
		Error:      outcome.Error,
		DurationMs: outcome.Duration.Milliseconds(),
	})
	if err != nil {
		slog.Warn("failed to record enrichment attempt", "kind", outcome.Kind, "id", outcome.EntityID, "error", err)
	}
}
