package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/rosterly/internal/metrics"
	"github.com/hrygo/rosterly/server"
	"github.com/hrygo/rosterly/server/runner/embedding"
	"github.com/hrygo/rosterly/server/service/enrichment"
)

var reembedCmd = &cobra.Command{
	Use:   "reembed",
	Short: "Enrich every employee and client that has no embedding yet",
	Run: func(cmd *cobra.Command, _ []string) {
		batch, _ := cmd.Flags().GetInt("batch-size")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if err := runReembed(cmd.Context(), batch, concurrency); err != nil {
			slog.Error("reembed failed", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	reembedCmd.Flags().Int("batch-size", 8, "records fetched per page")
	reembedCmd.Flags().Int("concurrency", 2, "parallel provider calls")
}

func runReembed(ctx context.Context, batch, concurrency int) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}
	embedder, err := server.NewEmbeddingService(p)
	if err != nil {
		return errors.Wrap(err, "embedding provider is not configured")
	}
	s, err := openStore(ctx, p)
	if err != nil {
		return err
	}
	defer s.Close()
	metrics.Register()

	opts := []enrichment.Option{
		enrichment.WithRecorder(enrichment.NewStoreRecorder(s)),
		enrichment.WithTimeout(p.EnrichmentTimeout),
	}
	runner := embedding.NewRunner(s,
		enrichment.NewEmployeeHandler(embedder, s, opts...),
		enrichment.NewClientHandler(embedder, s, opts...)).
		WithBatchSize(batch).
		WithConcurrency(concurrency)

	report, err := runner.RunOnce(ctx)
	if err != nil {
		return err
	}
	slog.Info("reembed finished",
		"employees_succeeded", report.Employees.Succeeded,
		"employees_failed", report.Employees.Failed,
		"clients_succeeded", report.Clients.Succeeded,
		"clients_failed", report.Clients.Failed)
	return nil
}
