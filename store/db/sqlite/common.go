package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hrygo/rosterly/store"
)

// placeholder returns a placeholder for SQLite (uses ?)
func placeholder(int) string {
	return "?"
}

// placeholders returns n placeholders for SQLite
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}

// paginate appends LIMIT/OFFSET clauses when set. SQLite needs a LIMIT before OFFSET.
func paginate(query string, limit, offset int) string {
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	} else if offset > 0 {
		query += " LIMIT -1"
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}
	return query
}

// contains builds a LIKE pattern matching s anywhere. SQLite LIKE is case-insensitive for ASCII.
func contains(s string) string {
	return "%" + s + "%"
}

// wrapWriteError maps unique violations to store.ErrAlreadyExists.
func wrapWriteError(err error, msg string) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")) {
			return errors.Wrap(store.ErrAlreadyExists, msg)
		}
	}
	return errors.Wrap(err, msg)
}

// vectorArg encodes an embedding in pgvector's text form; nil stays SQL NULL.
func vectorArg(embedding []float32) any {
	if embedding == nil {
		return nil
	}
	return pgvector.NewVector(embedding)
}

func scanVector(raw sql.NullString) ([]float32, error) {
	if !raw.Valid {
		return nil, nil
	}
	var v pgvector.Vector
	if err := v.Scan(raw.String); err != nil {
		return nil, errors.Wrap(err, "failed to decode embedding")
	}
	return v.Slice(), nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
