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

func (d *DB) CreateShift(ctx context.Context, create *store.Shift) (*store.Shift, error) {
	if create.ID == uuid.Nil {
		create.ID = uuid.New()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	create.UpdatedTs = create.CreatedTs

	fields := []string{"id", "manager_id", "client_id", "employee_id", "start_ts", "end_ts", "is_paid", "created_ts", "updated_ts"}
	args := []any{create.ID, create.ManagerID, create.ClientID, create.EmployeeID, create.StartTs, create.EndTs, create.IsPaid, create.CreatedTs, create.UpdatedTs}

	stmt := `INSERT INTO shift (` + strings.Join(fields, ", ") + `) VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, wrapWriteError(err, "failed to create shift")
	}
	return create, nil
}

func (d *DB) ListShifts(ctx context.Context, find *store.FindShift) ([]*store.Shift, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "s.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ManagerID; v != nil {
		where, args = append(where, "s.manager_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ClientID; v != nil {
		where, args = append(where, "s.client_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.EmployeeID; v != nil {
		where, args = append(where, "s.employee_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.IsPaid; v != nil {
		where, args = append(where, "s.is_paid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.FromTs; v != nil {
		where, args = append(where, "s.end_ts > "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ToTs; v != nil {
		where, args = append(where, "s.start_ts < "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT s.id, s.manager_id, s.client_id, s.employee_id, s.start_ts, s.end_ts, s.is_paid, s.created_ts, s.updated_ts,
			c.default_rate, e.default_rate, m.default_rate
		FROM shift s
		LEFT JOIN client c ON c.id = s.client_id
		LEFT JOIN employee e ON e.id = s.employee_id
		LEFT JOIN manager m ON m.id = s.manager_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY s.start_ts DESC, s.id`
	query = paginate(query, find.Limit, find.Offset)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list shifts")
	}
	defer rows.Close()

	list := make([]*store.Shift, 0)
	for rows.Next() {
		s := &store.Shift{}
		var clientRate, employeeRate, managerRate sql.NullFloat64
		if err := rows.Scan(
			&s.ID,
			&s.ManagerID,
			&s.ClientID,
			&s.EmployeeID,
			&s.StartTs,
			&s.EndTs,
			&s.IsPaid,
			&s.CreatedTs,
			&s.UpdatedTs,
			&clientRate,
			&employeeRate,
			&managerRate,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan shift")
		}
		s.ClientRate = nullableFloat(clientRate)
		s.EmployeeRate = nullableFloat(employeeRate)
		s.ManagerRate = nullableFloat(managerRate)
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate shifts")
	}
	return list, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
