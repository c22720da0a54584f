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

const employeeColumns = `id, manager_id, first_name, last_name, nickname, mobile, email, default_rate, embedding, created_ts, updated_ts`

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
	stmt := `INSERT INTO employee (` + employeeColumns + `) VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, wrapWriteError(err, "failed to create employee")
	}
	return create, nil
}

func (d *DB) ListEmployees(ctx context.Context, find *store.FindEmployee) ([]*store.Employee, error) {
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
	if v := find.FirstNameContains; v != nil && *v != "" {
		where, args = append(where, "first_name ILIKE "+placeholder(len(args)+1)), append(args, contains(*v))
	}
	if v := find.LastNameContains; v != nil && *v != "" {
		where, args = append(where, "last_name ILIKE "+placeholder(len(args)+1)), append(args, contains(*v))
	}
	if v := find.EmailContains; v != nil && *v != "" {
		where, args = append(where, "email ILIKE "+placeholder(len(args)+1)), append(args, contains(*v))
	}
	if v := find.NicknameContains; v != nil && *v != "" {
		where, args = append(where, "nickname ILIKE "+placeholder(len(args)+1)), append(args, contains(*v))
	}
	if v := find.Text; v != nil && *v != "" {
		p := placeholder(len(args) + 1)
		where, args = append(where, "(first_name ILIKE "+p+" OR last_name ILIKE "+p+" OR nickname ILIKE "+p+")"), append(args, contains(*v))
	}
	if find.MissingEmbedding {
		where = append(where, "embedding IS NULL")
	}
	orderBy := "created_ts DESC, id"
	if v := find.AfterID; v != nil {
		where, args = append(where, "id > "+placeholder(len(args)+1)), append(args, *v)
		orderBy = "id ASC"
	}

	query := `SELECT ` + employeeColumns + `
		FROM employee
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + orderBy
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

func scanEmployee(rows *sql.Rows, extra ...any) (*store.Employee, error) {
	e := &store.Employee{}
	var (
		rate sql.NullFloat64
		raw  []byte
	)
	dest := []any{
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
	}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return nil, errors.Wrap(err, "failed to scan employee")
	}
	if rate.Valid {
		e.DefaultRate = &rate.Float64
	}
	embedding, err := scanVector(raw)
	if err != nil {
		return nil, err
	}
	e.Embedding = embedding
	return e, nil
}
