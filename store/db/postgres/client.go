package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hrygo/rosterly/store"
)

const clientColumns = `id, manager_id, client_name, mobile, email, client_description, default_rate, embedding, created_ts, updated_ts`

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
	stmt := `INSERT INTO client (` + clientColumns + `) VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, wrapWriteError(err, "failed to create client")
	}
	return create, nil
}

func (d *DB) ListClients(ctx context.Context, find *store.FindClient) ([]*store.Client, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ManagerID; v != nil {
		where, args = append(where, "manager_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "email = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ClientNameContains; v != nil && *v != "" {
		where, args = append(where, "client_name ILIKE "+placeholder(len(args)+1)), append(args, contains(*v))
	}
	if v := find.EmailContains; v != nil && *v != "" {
		where, args = append(where, "email ILIKE "+placeholder(len(args)+1)), append(args, contains(*v))
	}
	if v := find.MobileContains; v != nil && *v != "" {
		where, args = append(where, "mobile ILIKE "+placeholder(len(args)+1)), append(args, contains(*v))
	}
	if v := find.ClientDescriptionContains; v != nil && *v != "" {
		where, args = append(where, "client_description ILIKE "+placeholder(len(args)+1)), append(args, contains(*v))
	}
	if v := find.Text; v != nil && *v != "" {
		p := placeholder(len(args) + 1)
		where, args = append(where, "(client_name ILIKE "+p+" OR email ILIKE "+p+" OR mobile ILIKE "+p+" OR client_description ILIKE "+p+")"), append(args, contains(*v))
	}
	if find.MissingEmbedding {
		where = append(where, "embedding IS NULL")
	}
	orderBy := "created_ts DESC, id"
	if v := find.AfterID; v != nil {
		where, args = append(where, "id > "+placeholder(len(args)+1)), append(args, *v)
		orderBy = "id ASC"
	}

	query := `SELECT ` + clientColumns + `
		FROM client
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + orderBy
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

func scanClient(rows *sql.Rows, extra ...any) (*store.Client, error) {
	c := &store.Client{}
	var (
		rate sql.NullFloat64
		raw  []byte
	)
	dest := []any{
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
	}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return nil, errors.Wrap(err, "failed to scan client")
	}
	if rate.Valid {
		c.DefaultRate = &rate.Float64
	}
	embedding, err := scanVector(raw)
	if err != nil {
		return nil, err
	}
	c.Embedding = embedding
	return c, nil
}
