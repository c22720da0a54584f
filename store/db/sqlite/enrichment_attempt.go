package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/rosterly/store"
)

func (d *DB) CreateEnrichmentAttempt(ctx context.Context, create *store.EnrichmentAttempt) (*store.EnrichmentAttempt, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	fields := []string{"`kind`", "`entity_id`", "`status`", "`error`", "`duration_ms`", "`created_ts`"}
	args := []any{create.Kind, create.EntityID, create.Status, create.Error, create.DurationMs, create.CreatedTs}

	stmt := "INSERT INTO `enrichment_attempt` (" + strings.Join(fields, ", ") + ") VALUES (" + placeholders(len(args)) + ") RETURNING `id`"
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create enrichment attempt")
	}
	return create, nil
}

func (d *DB) ListEnrichmentAttempts(ctx context.Context, find *store.FindEnrichmentAttempt) ([]*store.EnrichmentAttempt, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.Kind; v != nil {
		where, args = append(where, "`kind` = ?"), append(args, *v)
	}
	if v := find.EntityID; v != nil {
		where, args = append(where, "`entity_id` = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "`status` = ?"), append(args, *v)
	}

	query := "SELECT `id`, `kind`, `entity_id`, `status`, `error`, `duration_ms`, `created_ts` FROM `enrichment_attempt` WHERE " +
		strings.Join(where, " AND ") + " ORDER BY `id` DESC"
	if find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list enrichment attempts")
	}
	defer rows.Close()

	list := make([]*store.EnrichmentAttempt, 0)
	for rows.Next() {
		a := &store.EnrichmentAttempt{}
		if err := rows.Scan(&a.ID, &a.Kind, &a.EntityID, &a.Status, &a.Error, &a.DurationMs, &a.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan enrichment attempt")
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate enrichment attempts")
	}
	return list, nil
}
