package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/rosterly/store"
)

func placeholder(n int) string {
	return "$" + fmt.Sprint(n)
}

func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}

// paginate appends LIMIT/OFFSET clauses when set.
func paginate(query string, limit, offset int) string {
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}
	return query
}

// contains builds an ILIKE pattern matching s anywhere.
func contains(s string) string {
	return "%" + s + "%"
}

// wrapWriteError maps unique violations to store.ErrAlreadyExists.
func wrapWriteError(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return errors.Wrapf(store.ErrAlreadyExists, "%s: %s", msg, pqErr.Constraint)
	}
	return errors.Wrap(err, msg)
}

// vectorArg encodes an embedding for a query parameter; nil stays SQL NULL.
func vectorArg(embedding []float32) any {
	if embedding == nil {
		return nil
	}
	return pgvector.NewVector(embedding)
}

// scanVector decodes a nullable vector column read as raw bytes.
func scanVector(raw []byte) ([]float32, error) {
	if raw == nil {
		return nil, nil
	}
	var v pgvector.Vector
	if err := v.Scan(raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode embedding")
	}
	return v.Slice(), nil
}
