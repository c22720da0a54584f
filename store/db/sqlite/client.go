package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hrygo/rosterly/store"
)

const clientColumns = "`id`, `manager_id`, `client_name`, `mobile`, `email`, `client_description`, `default_rate`, `embedding`, `created_ts`, `updated_ts`"

func (d *DB) CreateClient(ctx context.Context, create *store.Client) (*store.Client, error) {
	if create.ID == uuid.Nil {
		create.ID = uuid.New()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	create.UpdatedTs = create.CreatedTs

	args := []any{
		create.ID,
		create.ManagerID,
		create.ClientName,
		create.Mobile,
		create.Email,
		create.ClientDescription,
		create.DefaultRate,
		vectorArg(create.Embedding),
		create.CreatedTs,
		create.UpdatedTs,
	}
	stmt := "INSERT INTO `client` (" + clientColumns + ") VALUES (" + placeholders(len(args)) + ")"
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, wrapWriteError(err, "failed to create client")
	}
	return create, nil
}

func (d *DB) ListClients(ctx context.Context, find *store.FindClient) ([]*store.Client, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "`id` = ?"), append(args, *v)
	}
	if v := find.ManagerID; v != nil {
		where, args = append(where, "`manager_id` = ?"), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "`email` = ?"), append(args, *v)
	}
	if v := find.ClientNameContains; v != nil && *v != "" {
		where, args = append(where, "`client_name` LIKE ?"), append(args, contains(*v))
	}
	if v := find.EmailContains; v != nil && *v != "" {
		where, args = append(where, "`email` LIKE ?"), append(args, contains(*v))
	}
	if v := find.MobileContains; v != nil && *v != "" {
		where, args = append(where, "`mobile` LIKE ?"), append(args, contains(*v))
	}
	if v := find.ClientDescriptionContains; v != nil && *v != "" {
		where, args = append(where, "`client_description` LIKE ?"), append(args, contains(*v))
	}
	if v := find.Text; v != nil && *v != "" {
		pattern := contains(*v)
		where = append(where, "(`client_name` LIKE ? OR `email` LIKE ? OR `mobile` LIKE ? OR `client_description` LIKE ?)")
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if find.MissingEmbedding {
		where = append(where, "`embedding` IS NULL")
	}
	orderBy := "`created_ts` DESC, `id`"
	if v := find.AfterID; v != nil {
		where, args = append(where, "`id` > ?"), append(args, *v)
		orderBy = "`id` ASC"
	}

	query := "SELECT " + clientColumns + " FROM `client` WHERE " + strings.Join(where, " AND ") + " ORDER BY " + orderBy
	query = paginate(query, find.Limit, find.Offset)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list clients")
	}
	defer rows.Close()

	list := make([]*store.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate clients")
	}
	return list, nil
}

func scanClient(rows *sql.Rows) (*store.Client, error) {
	c := &store.Client{}
	var (
		rate sql.NullFloat64
		raw  sql.NullString
	)
	if err := rows.Scan(
		&c.ID,
		&c.ManagerID,
		&c.ClientName,
		&c.Mobile,
		&c.Email,
		&c.ClientDescription,
		&rate,
		&raw,
		&c.CreatedTs,
		&c.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan client")
	}
	c.DefaultRate = nullableFloat(rate)
	embedding, err := scanVector(raw)
	if err != nil {
		return nil, err
	}
	c.Embedding = embedding
	return c, nil
}
