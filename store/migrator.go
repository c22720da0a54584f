package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Schema bootstrap:
//
// Migrate checks whether the database is initialized. If not, it applies
// migration/{driver}/LATEST.sql in a single transaction. The postgres schema
// declares vector columns whose length is taken from the profile, so the
// {{DIMENSIONS}} token in the file is replaced before execution.

//go:embed migration
var migrationFS embed.FS

const (
	// LatestSchemaFileName is the name of the latest schema file.
	LatestSchemaFileName = "LATEST.sql"

	dimensionsToken = "{{DIMENSIONS}}"
)

// Migrate creates the schema on a fresh database. It is a no-op on an initialized one.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		slog.Debug("database already initialized", "driver", s.profile.Driver)
		return nil
	}

	filePath := s.getMigrationBasePath() + LatestSchemaFileName
	bytes, err := migrationFS.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file %s", filePath)
	}
	schema := strings.ReplaceAll(string(bytes), dimensionsToken, strconv.Itoa(s.dimensions))

	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	slog.Info("initializing new database with latest schema", "file", filePath, "dimensions", s.dimensions)
	if err := s.execute(ctx, tx, schema); err != nil {
		return errors.Wrapf(err, "failed to execute SQL file %s", filePath)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	slog.Info("database initialized successfully")
	return nil
}

func (s *Store) getMigrationBasePath() string {
	return fmt.Sprintf("migration/%s/", s.profile.Driver)
}

// execute runs a schema file inside tx.
// PostgreSQL rejects several statements in one ExecContext call, so the file is split first.
func (s *Store) execute(ctx context.Context, tx *sql.Tx, stmt string) error {
	if s.profile.Driver != "postgres" {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to execute statement")
		}
		return nil
	}
	for i, one := range splitSQL(stmt) {
		if _, err := tx.ExecContext(ctx, one); err != nil {
			return errors.Wrapf(err, "failed to execute statement %d: %s", i+1, one)
		}
	}
	return nil
}

// splitSQL splits a schema file on top-level semicolons.
// Semicolons inside single-quoted strings, $tag$ bodies and comments are ignored.
func splitSQL(src string) []string {
	var (
		statements []string
		current    strings.Builder
		dollarTag  string
		inQuote    bool
		inLine     bool
		inBlock    bool
	)

	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch {
		case inLine:
			if ch == '\n' {
				inLine = false
				current.WriteByte(ch)
			}
			continue
		case inBlock:
			if ch == '*' && i+1 < len(src) && src[i+1] == '/' {
				inBlock = false
				i++
			}
			continue
		case dollarTag != "":
			if strings.HasPrefix(src[i:], dollarTag) {
				current.WriteString(dollarTag)
				i += len(dollarTag) - 1
				dollarTag = ""
				continue
			}
			current.WriteByte(ch)
			continue
		case inQuote:
			if ch == '\'' {
				inQuote = false
			}
			current.WriteByte(ch)
			continue
		}

		switch {
		case ch == '-' && i+1 < len(src) && src[i+1] == '-':
			inLine = true
			i++
		case ch == '/' && i+1 < len(src) && src[i+1] == '*':
			inBlock = true
			i++
		case ch == '\'':
			inQuote = true
			current.WriteByte(ch)
		case ch == '$':
			if end := strings.IndexByte(src[i+1:], '$'); end >= 0 && isDollarTag(src[i+1:i+1+end]) {
				dollarTag = src[i : i+end+2]
				current.WriteString(dollarTag)
				i += end + 1
				continue
			}
			current.WriteByte(ch)
		case ch == ';':
			current.WriteByte(ch)
			flush()
		default:
			current.WriteByte(ch)
		}
	}
	flush()
	return statements
}

func isDollarTag(tag string) bool {
	for _, r := range tag {
		if r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
