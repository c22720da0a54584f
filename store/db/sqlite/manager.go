package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hrygo/rosterly/store"
)

func (d *DB) CreateManager(ctx context.Context, create *store.Manager) (*store.Manager, error) {
	if create.ID == uuid.Nil {
		create.ID = uuid.New()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	create.UpdatedTs = create.CreatedTs

	fields := []string{"`id`", "`first_name`", "`last_name`", "`username`", "`email`", "`password_hash`", "`default_rate`", "`created_ts`", "`updated_ts`"}
	args := []any{create.ID, create.FirstName, create.LastName, create.Username, create.Email, create.PasswordHash, create.DefaultRate, create.CreatedTs, create.UpdatedTs}

	stmt := "INSERT INTO `manager` (" + strings.Join(fields, ", ") + ") VALUES (" + placeholders(len(args)) + ")"
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, wrapWriteError(err, "failed to create manager")
	}
	return create, nil
}

func (d *DB) ListManagers(ctx context.Context, find *store.FindManager) ([]*store.Manager, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "`id` = ?"), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "`email` = ?"), append(args, *v)
	}
	if v := find.Username; v != nil {
		where, args = append(where, "`username` = ?"), append(args, *v)
	}

	query := "SELECT `id`, `first_name`, `last_name`, `username`, `email`, `password_hash`, `default_rate`, `created_ts`, `updated_ts` " +
		"FROM `manager` WHERE " + strings.Join(where, " AND ") + " ORDER BY `created_ts` DESC, `id`"
	query = paginate(query, find.Limit, find.Offset)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list managers")
	}
	defer rows.Close()

	list := make([]*store.Manager, 0)
	for rows.Next() {
		m := &store.Manager{}
		if err := rows.Scan(
			&m.ID,
			&m.FirstName,
			&m.LastName,
			&m.Username,
			&m.Email,
			&m.PasswordHash,
			&m.DefaultRate,
			&m.CreatedTs,
			&m.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan manager")
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate managers")
	}
	return list, nil
}
