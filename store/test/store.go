package test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hrygo/rosterly/internal/profile"
	"github.com/hrygo/rosterly/store"
	"github.com/hrygo/rosterly/store/db"
)

// TestDimensions keeps test vectors short and readable.
const TestDimensions = 3

// NewTestingStore returns a migrated store backed by a fresh database.
// SQLite in a temp dir is used unless DRIVER=postgres or POSTGRES_TEST_DSN is set.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	prof := getTestingProfile(t)
	dbDriver, err := db.NewDBDriver(prof)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(dbDriver, prof)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		ts.Close()
	})
	return ts
}

func getTestingProfile(t *testing.T) *profile.Profile {
	prof := &profile.Profile{
		Mode:                  "dev",
		Driver:                getDriverFromEnv(),
		AIEmbeddingDimensions: TestDimensions,
	}

	switch prof.Driver {
	case "postgres":
		prof.DSN = GetPostgresDSN(t)
	default:
		prof.Data = t.TempDir()
		prof.DSN = filepath.Join(prof.Data, fmt.Sprintf("rosterly_%s.db", prof.Mode))
	}
	return prof
}

func getDriverFromEnv() string {
	if driver := os.Getenv("DRIVER"); driver != "" {
		return driver
	}
	if os.Getenv("POSTGRES_TEST_DSN") != "" {
		return "postgres"
	}
	return "sqlite"
}
