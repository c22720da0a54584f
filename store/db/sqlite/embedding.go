package sqlite

import (
	"cmp"
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hrygo/rosterly/store"
)

func (d *DB) UpdateEmbedding(ctx context.Context, kind store.EntityKind, id uuid.UUID, embedding []float32) error {
	table, err := tableOf(kind)
	if err != nil {
		return err
	}

	stmt := "UPDATE `" + table + "` SET `embedding` = ?, `updated_ts` = ? WHERE `id` = ?"
	result, err := d.db.ExecContext(ctx, stmt, vectorArg(embedding), time.Now().Unix(), id)
	if err != nil {
		return errors.Wrapf(err, "failed to update %s embedding", kind)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return errors.Wrapf(store.ErrNotFound, "%s %s", kind, id)
	}
	return nil
}

// NearestEmployees scans every embedded employee and ranks by cosine distance in Go.
// The ordering matches the postgres driver: distance, then id.
func (d *DB) NearestEmployees(ctx context.Context, vector []float32, limit int) ([]*store.Scored[store.Employee], error) {
	query := "SELECT " + employeeColumns + " FROM `employee` WHERE `embedding` IS NOT NULL"
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search employees by vector")
	}
	defer rows.Close()

	list := make([]*store.Scored[store.Employee], 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, &store.Scored[store.Employee]{Entity: e, Distance: cosineDistance(vector, e.Embedding)})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate employee search results")
	}

	return rank(list, limit, func(s *store.Scored[store.Employee]) uuid.UUID { return s.Entity.ID }), nil
}

func (d *DB) NearestClients(ctx context.Context, vector []float32, limit int) ([]*store.Scored[store.Client], error) {
	query := "SELECT " + clientColumns + " FROM `client` WHERE `embedding` IS NOT NULL"
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search clients by vector")
	}
	defer rows.Close()

	list := make([]*store.Scored[store.Client], 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, &store.Scored[store.Client]{Entity: c, Distance: cosineDistance(vector, c.Embedding)})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate client search results")
	}

	return rank(list, limit, func(s *store.Scored[store.Client]) uuid.UUID { return s.Entity.ID }), nil
}

// rank drops rows without a cosine distance, sorts by distance then id string and truncates to limit.
func rank[T any](list []*store.Scored[T], limit int, id func(*store.Scored[T]) uuid.UUID) []*store.Scored[T] {
	list = slices.DeleteFunc(list, func(s *store.Scored[T]) bool { return math.IsNaN(s.Distance) })
	slices.SortStableFunc(list, func(a, b *store.Scored[T]) int {
		if c := compareDistance(a.Distance, b.Distance); c != 0 {
			return c
		}
		return strings.Compare(id(a).String(), id(b).String())
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}

func compareDistance(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}
	return cmp.Compare(a, b)
}

// cosineDistance mirrors pgvector's <=>: 1 - cos(a, b), NaN when either vector has zero norm.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.NaN()
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return math.NaN()
	}
	similarity := dot / math.Sqrt(normA*normB)
	// Clamp rounding error so distance stays within [0, 2].
	similarity = max(-1, min(1, similarity))
	return 1 - similarity
}

func tableOf(kind store.EntityKind) (string, error) {
	switch kind {
	case store.EntityKindEmployee:
		return "employee", nil
	case store.EntityKindClient:
		return "client", nil
	}
	return "", errors.Errorf("unknown entity kind %q", kind)
}
