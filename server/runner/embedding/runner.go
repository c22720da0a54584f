// Package embedding sweeps records whose enrichment never landed and runs them
// through the enrichment handlers once more. It is started by an operator, never
// by the server.
package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/rosterly/server/service/enrichment"
	"github.com/hrygo/rosterly/store"
)

// Report counts what one sweep did.
type Report struct {
	Employees Counts
	Clients   Counts
}

type Counts struct {
	Succeeded int
	Failed    int
}

type Runner struct {
	store       *store.Store
	employees   *enrichment.Handler
	clients     *enrichment.Handler
	batchSize   int
	concurrency int
}

// NewRunner creates a re-embedding runner.
// Small batches keep memory flat; the provider sets the real pace.
func NewRunner(store *store.Store, employees, clients *enrichment.Handler) *Runner {
	return &Runner{
		store:       store,
		employees:   employees,
		clients:     clients,
		batchSize:   8,
		concurrency: 2,
	}
}

func (r *Runner) WithBatchSize(n int) *Runner {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

func (r *Runner) WithConcurrency(n int) *Runner {
	if n > 0 {
		r.concurrency = n
	}
	return r
}

// RunOnce enriches every employee and client without an embedding, one attempt each.
func (r *Runner) RunOnce(ctx context.Context) (*Report, error) {
	report := &Report{}

	err := r.sweep(ctx, "employee", r.employees, &report.Employees,
		func(ctx context.Context, after uuid.UUID) ([]item, error) {
			list, err := r.store.ListEmployees(ctx, &store.FindEmployee{
				MissingEmbedding: true,
				AfterID:          &after,
				Limit:            r.batchSize,
			})
			if err != nil {
				return nil, err
			}
			items := make([]item, len(list))
			for i, e := range list {
				items[i] = item{id: e.ID, text: enrichment.EmployeeText(e.FirstName, e.LastName, e.Email, e.Mobile)}
			}
			return items, nil
		})
	if err != nil {
		return report, err
	}

	err = r.sweep(ctx, "client", r.clients, &report.Clients,
		func(ctx context.Context, after uuid.UUID) ([]item, error) {
			list, err := r.store.ListClients(ctx, &store.FindClient{
				MissingEmbedding: true,
				AfterID:          &after,
				Limit:            r.batchSize,
			})
			if err != nil {
				return nil, err
			}
			items := make([]item, len(list))
			for i, c := range list {
				items[i] = item{id: c.ID, text: enrichment.ClientText(c.ClientName, c.Mobile, c.Email, c.ClientDescription)}
			}
			return items, nil
		})
	return report, err
}

type item struct {
	id   uuid.UUID
	text string
}

// sweep pages through the records still missing an embedding by ascending id.
// The cursor only moves forward, so a failed record is not retried in the same
// sweep and records inserted meanwhile cannot shift the window.
func (r *Runner) sweep(ctx context.Context, kind string, handler *enrichment.Handler, counts *Counts,
	next func(ctx context.Context, after uuid.UUID) ([]item, error)) error {
	if handler == nil {
		return nil
	}

	after := uuid.Nil
	for {
		select {
		case <-ctx.Done():
			slog.Info("re-embedding cancelled", "kind", kind, "succeeded", counts.Succeeded, "failed", counts.Failed)
			return ctx.Err()
		default:
		}

		batch, err := next(ctx, after)
		if err != nil {
			return fmt.Errorf("failed to find %ss without embedding: %w", kind, err)
		}
		if len(batch) == 0 {
			break
		}

		var failed atomic.Int32
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)
		for _, it := range batch {
			g.Go(func() error {
				if !handler.Enrich(gctx, it.id, it.text).Succeeded() {
					failed.Add(1)
				}
				return nil
			})
		}
		_ = g.Wait()

		f := int(failed.Load())
		counts.Failed += f
		counts.Succeeded += len(batch) - f
		after = batch[len(batch)-1].id
		slog.Info("batch processed", "kind", kind, "count", len(batch), "failed", f)

		if len(batch) < r.batchSize {
			break
		}
	}

	slog.Info("re-embedding finished", "kind", kind, "succeeded", counts.Succeeded, "failed", counts.Failed)
	return nil
}
