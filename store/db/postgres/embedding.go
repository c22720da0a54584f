package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/rosterly/store"
)

func (d *DB) UpdateEmbedding(ctx context.Context, kind store.EntityKind, id uuid.UUID, embedding []float32) error {
	table, err := tableOf(kind)
	if err != nil {
		return err
	}

	stmt := `UPDATE ` + table + ` SET embedding = ` + placeholder(1) + `, updated_ts = ` + placeholder(2) + ` WHERE id = ` + placeholder(3)
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

// NearestEmployees ranks by the <=> operator. Results are exact: the secondary
// id key keeps pgvector indexes out of the plan. Zero-norm rows have no cosine
// distance and are skipped.
func (d *DB) NearestEmployees(ctx context.Context, vector []float32, limit int) ([]*store.Scored[store.Employee], error) {
	query := `SELECT ` + employeeColumns + `, embedding <=> ` + placeholder(1) + ` AS distance
		FROM employee
		WHERE embedding IS NOT NULL AND vector_norm(embedding) > 0
		ORDER BY distance ASC, id ASC
		LIMIT ` + placeholder(2)

	rows, err := d.db.QueryContext(ctx, query, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search employees by vector")
	}
	defer rows.Close()

	list := make([]*store.Scored[store.Employee], 0, limit)
	for rows.Next() {
		var distance float64
		e, err := scanEmployee(rows, &distance)
		if err != nil {
			return nil, err
		}
		list = append(list, &store.Scored[store.Employee]{Entity: e, Distance: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate employee search results")
	}
	return list, nil
}

func (d *DB) NearestClients(ctx context.Context, vector []float32, limit int) ([]*store.Scored[store.Client], error) {
	query := `SELECT ` + clientColumns + `, embedding <=> ` + placeholder(1) + ` AS distance
		FROM client
		WHERE embedding IS NOT NULL AND vector_norm(embedding) > 0
		ORDER BY distance ASC, id ASC
		LIMIT ` + placeholder(2)

	rows, err := d.db.QueryContext(ctx, query, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search clients by vector")
	}
	defer rows.Close()

	list := make([]*store.Scored[store.Client], 0, limit)
	for rows.Next() {
		var distance float64
		c, err := scanClient(rows, &distance)
		if err != nil {
			return nil, err
		}
		list = append(list, &store.Scored[store.Client]{Entity: c, Distance: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate client search results")
	}
	return list, nil
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
