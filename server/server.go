package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/rosterly/internal/metrics"
	"github.com/hrygo/rosterly/internal/profile"
	"github.com/hrygo/rosterly/plugin/ai"
	"github.com/hrygo/rosterly/plugin/ai/cache"
	"github.com/hrygo/rosterly/server/event"
	"github.com/hrygo/rosterly/server/internal/observability"
	apiv1 "github.com/hrygo/rosterly/server/router/api/v1"
	"github.com/hrygo/rosterly/server/service/enrichment"
	"github.com/hrygo/rosterly/server/service/search"
	"github.com/hrygo/rosterly/store"
)

const limiterSweepInterval = 5 * time.Minute

// Server wires the store, the event bus and the HTTP API together.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echo       *echo.Echo
	bus        *event.Bus
	dispatcher event.Dispatcher
	apiV1      *apiv1.APIV1Service
}

// Option customises NewServer.
type Option func(*options)

type options struct {
	embedder    ai.EmbeddingService
	hasEmbedder bool
}

// WithEmbeddingService replaces the provider built from the profile.
// A nil service disables enrichment and search.
func WithEmbeddingService(embedder ai.EmbeddingService) Option {
	return func(o *options) {
		o.embedder = embedder
		o.hasEmbedder = true
	}
}

// NewEmbeddingService builds the provider client described by the profile.
// It returns a nil service and the validation error when the profile carries no usable AI config.
func NewEmbeddingService(p *profile.Profile) (ai.EmbeddingService, error) {
	cfg := ai.NewConfigFromProfile(p)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return ai.NewEmbeddingService(&cfg.Embedding)
}

// NewServer composes the application. With AI enabled, it fails fast when search
// is enabled but no embedding provider can be built.
func NewServer(ctx context.Context, p *profile.Profile, s *store.Store, opts ...Option) (*Server, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	embedder := o.embedder
	switch {
	case o.hasEmbedder:
	case !p.AIEnabled:
		slog.Info("AI is disabled, enrichment and search are off")
	default:
		var err error
		embedder, err = NewEmbeddingService(p)
		if err != nil {
			if p.SearchEnabled {
				return nil, errors.Wrap(err, "search is enabled but the embedding provider is not configured")
			}
			slog.Warn("embedding provider unavailable, enrichment disabled", "error", err)
			embedder = nil
		}
	}
	if embedder != nil && embedder.Dimensions() != s.Dimensions() {
		return nil, errors.Errorf("embedding dimensions %d do not match the schema (%d)", embedder.Dimensions(), s.Dimensions())
	}

	metrics.Register()

	server := &Server{
		Profile:    p,
		Store:      s,
		dispatcher: newDispatcher(p),
	}
	server.bus = event.NewBus(server.dispatcher)

	if embedder != nil {
		handlerOpts := []enrichment.Option{
			enrichment.WithRecorder(enrichment.NewStoreRecorder(s)),
			enrichment.WithTimeout(p.EnrichmentTimeout),
		}
		enrichment.NewEmployeeHandler(embedder, s, handlerOpts...).Subscribe(server.bus)
		enrichment.NewClientHandler(embedder, s, handlerOpts...).Subscribe(server.bus)
	}

	var queryEmbedder ai.EmbeddingService
	if p.SearchEnabled && embedder != nil {
		queryEmbedder = embedder
		if p.SearchCacheSize > 0 {
			queryEmbedder = cache.NewEmbeddingService(embedder, p.SearchCacheSize, p.SearchCacheTTL)
		}
	}
	searchOpts := []search.Option{search.WithMinSimilarity(p.SearchMinSimilarity)}
	server.apiV1 = apiv1.NewAPIV1Service(p, s, server.bus,
		search.NewEmployeeService(queryEmbedder, s, searchOpts...),
		search.NewClientService(queryEmbedder, s, searchOpts...))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(observability.RequestLogger(slog.Default()))
	e.Use(observability.HTTPMetrics())
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	server.apiV1.Register(e)
	server.echo = e

	slog.InfoContext(ctx, "server composed",
		"dispatch", p.EventDispatch,
		"enrichment", embedder != nil,
		"search", queryEmbedder != nil)
	return server, nil
}

func newDispatcher(p *profile.Profile) event.Dispatcher {
	if p.EventDispatch == profile.DispatchQueue {
		return event.NewQueueDispatcher(p.EventQueueSize, p.EventWorkers)
	}
	return event.InlineDispatcher{}
}

// Bus returns the event bus records are published on.
func (s *Server) Bus() *event.Bus {
	return s.bus
}

// Handler exposes the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves HTTP until Shutdown is called. It returns nil after a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	go s.sweepLimiters(ctx)

	addr := net.JoinHostPort(s.Profile.Addr, strconv.Itoa(s.Profile.Port))
	slog.Info("starting http server", "addr", addr, "mode", s.Profile.Mode, "version", s.Profile.Version)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, then drains queued events and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down http server")
	if err := s.echo.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown http server", "error", err)
	}
	if closer, ok := s.dispatcher.(*event.QueueDispatcher); ok {
		if err := closer.Close(); err != nil {
			slog.Error("failed to drain event queue", "error", err)
		}
	}
	if err := s.Store.Close(); err != nil {
		return errors.Wrap(err, "failed to close store")
	}
	slog.Info("rosterly stopped properly")
	return nil
}

func (s *Server) sweepLimiters(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.apiV1.SweepLimiters()
		}
	}
}
