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

const employeeColumns = "`id`, `manager_id`, `first_name`, `last_name`, `nickname`, `mobile`, `email`, `default_rate`, `embedding`, `created_ts`, `updated_ts`"

func (d *DB) CreateEmployee(ctx context.Context, create *store.Employee) (*store.Employee, error) {
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
		create.FirstName,
		create.LastName,
		create.Nickname,
		create.Mobile,
		create.Email,
		create.DefaultRate,
		vectorArg(create.Embedding),
		create.CreatedTs,
		create.UpdatedTs,
	}
	stmt := "INSERT INTO `employee` (" + employeeColumns + ") VALUES (" + placeholders(len(args)) + ")"
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, wrapWriteError(err, "failed to create employee")
	}
	return create, nil
}

func (d *DB) ListEmployees(ctx context.Context, find *store.FindEmployee) ([]*store.Employee, error) {
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
	if v := find.FirstNameContains; v != nil && *v != "" {
		where, args = append(where, "`first_name` LIKE ?"), append(args, contains(*v))
	}
	if v := find.LastNameContains; v != nil && *v != "" {
		where, args = append(where, "`last_name` LIKE ?"), append(args, contains(*v))
	}
	if v := find.EmailContains; v != nil && *v != "" {
		where, args = append(where, "`email` LIKE ?"), append(args, contains(*v))
	}
	if v := find.NicknameContains; v != nil && *v != "" {
		where, args = append(where, "`nickname` LIKE ?"), append(args, contains(*v))
	}
	if v := find.Text; v != nil && *v != "" {
		pattern := contains(*v)
		where = append(where, "(`first_name` LIKE ? OR `last_name` LIKE ? OR `nickname` LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if find.MissingEmbedding {
		where = append(where, "`embedding` IS NULL")
	}
	orderBy := "`created_ts` DESC, `id`"
	if v := find.AfterID; v != nil {
		where, args = append(where, "`id` > ?"), append(args, *v)
		orderBy = "`id` ASC"
	}

	query := "SELECT " + employeeColumns + " FROM `employee` WHERE " + strings.Join(where, " AND ") + " ORDER BY " + orderBy
	query = paginate(query, find.Limit, find.Offset)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list employees")
	}
	defer rows.Close()

	list := make([]*store.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate employees")
	}
	return list, nil
}

func scanEmployee(rows *sql.Rows) (*store.Employee, error) {
	e := &store.Employee{}
	var (
		rate sql.NullFloat64
		raw  sql.NullString
	)
	if err := rows.Scan(
		&e.ID,
		&e.ManagerID,
		&e.FirstName,
		&e.LastName,
		&e.Nickname,
		&e.Mobile,
		&e.Email,
		&rate,
		&raw,
		&e.CreatedTs,
		&e.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan employee")
	}
	e.DefaultRate = nullableFloat(rate)
	embedding, err := scanVector(raw)
	if err != nil {
		return nil, err
	}
	e.Embedding = embedding
	return e, nil
}
