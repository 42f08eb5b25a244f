// source: activity.sql

package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createStaffActivity = `-- name: CreateStaffActivity :one
INSERT INTO staff_activity (staff_id, actor_role, action, order_id, details)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, staff_id, actor_role, action, order_id, details, created_at
`

type CreateStaffActivityParams struct {
	StaffID   pgtype.UUID `json:"staff_id"`
	ActorRole string      `json:"actor_role"`
	Action    string      `json:"action"`
	OrderID   pgtype.UUID `json:"order_id"`
	Details   string      `json:"details"`
}

func (q *Queries) CreateStaffActivity(ctx context.Context, arg CreateStaffActivityParams) (StaffActivity, error) {
	row := q.db.QueryRow(ctx, createStaffActivity,
		arg.StaffID,
		arg.ActorRole,
		arg.Action,
		arg.OrderID,
		arg.Details,
	)
	var i StaffActivity
	err := row.Scan(
		&i.ID,
		&i.StaffID,
		&i.ActorRole,
		&i.Action,
		&i.OrderID,
		&i.Details,
		&i.CreatedAt,
	)
	return i, err
}

const listStaffActivity = `-- name: ListStaffActivity :many
SELECT id, staff_id, actor_role, action, order_id, details, created_at
FROM staff_activity
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

type ListStaffActivityParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListStaffActivity(ctx context.Context, arg ListStaffActivityParams) ([]StaffActivity, error) {
	rows, err := q.db.Query(ctx, listStaffActivity, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []StaffActivity{}
	for rows.Next() {
		var i StaffActivity
		if err := rows.Scan(
			&i.ID,
			&i.StaffID,
			&i.ActorRole,
			&i.Action,
			&i.OrderID,
			&i.Details,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
