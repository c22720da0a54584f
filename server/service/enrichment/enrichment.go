// Package enrichment turns newly created employees and clients into embedding vectors.
package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hrygo/rosterly/internal/metrics"
	"github.com/hrygo/rosterly/plugin/ai"
	"github.com/hrygo/rosterly/server/event"
	"github.com/hrygo/rosterly/store"
)

const separator = " | "

// EmbeddingWriter stores a vector on an existing entity.
type EmbeddingWriter interface {
	UpdateEmbedding(ctx context.Context, kind store.EntityKind, id uuid.UUID, embedding []float32) error
}

// Handler enriches one entity kind. It is subscribed to that kind's Created event.
type Handler struct {
	kind      store.EntityKind
	eventKind event.Kind
	embedder  ai.EmbeddingService
	writer    EmbeddingWriter
	recorder  Recorder
	timeout   time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithRecorder records the outcome of every attempt.
func WithRecorder(r Recorder) Option {
	return func(h *Handler) { h.recorder = r }
}

// WithTimeout bounds the provider call and the store write of one attempt.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

func NewEmployeeHandler(embedder ai.EmbeddingService, writer EmbeddingWriter, opts ...Option) *Handler {
	return newHandler(store.EntityKindEmployee, event.KindEmployeeCreated, embedder, writer, opts)
}

func NewClientHandler(embedder ai.EmbeddingService, writer EmbeddingWriter, opts ...Option) *Handler {
	return newHandler(store.EntityKindClient, event.KindClientCreated, embedder, writer, opts)
}

func newHandler(kind store.EntityKind, eventKind event.Kind, embedder ai.EmbeddingService, writer EmbeddingWriter, opts []Option) *Handler {
	h := &Handler{
		kind:      kind,
		eventKind: eventKind,
		embedder:  embedder,
		writer:    writer,
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers the handler for its event kind.
func (h *Handler) Subscribe(bus *event.Bus) {
	bus.Subscribe(h.eventKind, h.Handle)
}

// Handle embeds the entity carried by e and stores the vector.
// Failures are logged and recorded, never returned: creation has already succeeded
// and the entity simply stays without an embedding.
func (h *Handler) Handle(ctx context.Context, e event.Event) error {
	id, text, ok := h.canonical(e)
	if !ok {
		return fmt.Errorf("%s handler cannot handle %s events", h.kind, e.Kind())
	}
	h.Enrich(ctx, id, text)
	return nil
}

// Enrich runs one attempt for id with an already built canonical text.
func (h *Handler) Enrich(ctx context.Context, id uuid.UUID, text string) Outcome {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	err := h.enrich(ctx, id, text)
	outcome := Outcome{
		Kind:     h.kind,
		EntityID: id,
		Status:   store.EnrichmentSucceeded,
		Duration: time.Since(start),
	}
	if err != nil {
		outcome.Status = store.EnrichmentFailed
		outcome.Error = err.Error()
		slog.Error("failed to enrich entity", "kind", h.kind, "id", id, "error", err)
	} else {
		slog.Debug("entity enriched", "kind", h.kind, "id", id, "duration", outcome.Duration)
	}

	metrics.EnrichmentTotal.WithLabelValues(string(h.kind), string(outcome.Status)).Inc()
	metrics.EnrichmentDuration.WithLabelValues(string(h.kind)).Observe(outcome.Duration.Seconds())
	h.recorder.Record(ctx, outcome)
	return outcome
}

func (h *Handler) enrich(ctx context.Context, id uuid.UUID, text string) error {
	vector, err := h.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if err := h.writer.UpdateEmbedding(ctx, h.kind, id, vector); err != nil {
		return fmt.Errorf("update embedding: %w", err)
	}
	return nil
}

func (h *Handler) canonical(e event.Event) (uuid.UUID, string, bool) {
	switch e := e.(type) {
	case *event.EmployeeCreated:
		if h.kind != store.EntityKindEmployee {
			return uuid.Nil, "", false
		}
		return e.EmployeeID, EmployeeText(e.FirstName, e.LastName, e.Email, e.Mobile), true
	case *event.ClientCreated:
		if h.kind != store.EntityKindClient {
			return uuid.Nil, "", false
		}
		return e.ClientID, ClientText(e.ClientName, e.Mobile, e.Email, e.ClientDescription), true
	}
	return uuid.Nil, "", false
}

// EmployeeText is the canonical embedding input for an employee.
func EmployeeText(firstName, lastName, email, mobile string) string {
	return strings.Join([]string{firstName, lastName, email, mobile}, separator)
}

// ClientText is the canonical embedding input for a client.
func ClientText(clientName, mobile, email, description string) string {
	return strings.Join([]string{clientName, mobile, email, description}, separator)
}
