package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/rosterly/internal/profile"
	"github.com/hrygo/rosterly/server"
	"github.com/hrygo/rosterly/store"
	"github.com/hrygo/rosterly/store/db"
)

var version = "0.1.0"

const shutdownTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "rosterly",
	Short: `Staff rostering backend with semantic search over employees and clients.`,
	PersistentPreRun: func(*cobra.Command, []string) {
		setupLogger(viper.GetString("mode"))
	},
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Run: func(cmd *cobra.Command, _ []string) {
		if err := runServe(cmd.Context()); err != nil {
			slog.Error("server exited", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)
	viper.SetDefault("search-enabled", true)
	viper.SetDefault("search-cache-size", 1000)
	viper.SetDefault("search-cache-ttl", 10*time.Minute)
	viper.SetDefault("event-dispatch", profile.DispatchInline)
	viper.SetDefault("event-queue-size", 256)
	viper.SetDefault("event-workers", 2)
	viper.SetDefault("enrichment-timeout", 30*time.Second)

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("addr", "", "address of server")
	flags.Int("port", 8081, "port of server")
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", "database driver (sqlite or postgres)")
	flags.String("dsn", "", "database source name(aka. DSN)")
	flags.Bool("search-enabled", true, "serve similarity search")
	flags.Float64("search-min-similarity", 0, "drop search results scoring below this value (unset keeps plain top-k)")
	flags.Float64("search-rate-limit", 0, "per-client search requests per second, 0 disables limiting")
	flags.Int("search-cache-size", 1000, "cached query embeddings, 0 disables the cache")
	flags.Duration("search-cache-ttl", 10*time.Minute, "lifetime of a cached query embedding")
	flags.String("event-dispatch", profile.DispatchInline, `event delivery, "inline" or "queue"`)
	flags.Int("event-queue-size", 256, "queued events before publishers block")
	flags.Int("event-workers", 2, "event queue workers")
	flags.Duration("enrichment-timeout", 30*time.Second, "upper bound for one enrichment")

	for _, name := range []string{
		"mode", "addr", "port", "data", "driver", "dsn",
		"search-enabled", "search-min-similarity", "search-rate-limit",
		"search-cache-size", "search-cache-ttl",
		"event-dispatch", "event-queue-size", "event-workers", "enrichment-timeout",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("rosterly")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd, reembedCmd)
}

func setupLogger(mode string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if mode == "prod" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadProfile merges flags, ROSTERLY_* environment variables and defaults.
func loadProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:              viper.GetString("mode"),
		Addr:              viper.GetString("addr"),
		Port:              viper.GetInt("port"),
		Data:              viper.GetString("data"),
		Driver:            viper.GetString("driver"),
		DSN:               viper.GetString("dsn"),
		Version:           version,
		SearchEnabled:     viper.GetBool("search-enabled"),
		SearchRateLimit:   viper.GetFloat64("search-rate-limit"),
		SearchCacheSize:   viper.GetInt("search-cache-size"),
		SearchCacheTTL:    viper.GetDuration("search-cache-ttl"),
		EventDispatch:     viper.GetString("event-dispatch"),
		EventQueueSize:    viper.GetInt("event-queue-size"),
		EventWorkers:      viper.GetInt("event-workers"),
		EnrichmentTimeout: viper.GetDuration("enrichment-timeout"),
	}
	if viper.IsSet("search-min-similarity") {
		m := viper.GetFloat64("search-min-similarity")
		p.SearchMinSimilarity = &m
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// openStore connects to the configured database and applies the schema.
func openStore(ctx context.Context, p *profile.Profile) (*store.Store, error) {
	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	s := store.New(driver, p)
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

func runServe(ctx context.Context) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, p)
	if err != nil {
		return err
	}
	srv, err := server.NewServer(ctx, p, s)
	if err != nil {
		s.Close()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
