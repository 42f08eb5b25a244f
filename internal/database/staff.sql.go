// source: staff.sql

package database

import (
	"context"

	"github.com/google/uuid"
)

const staffColumns = `id, name, username, password_hash, role, phone, created_at`

func scanStaff(row interface{ Scan(...any) error }) (Staff, error) {
	var i Staff
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Username,
		&i.PasswordHash,
		&i.Role,
		&i.Phone,
		&i.CreatedAt,
	)
	return i, err
}

const createStaff = `-- name: CreateStaff :one
INSERT INTO staff (name, username, password_hash, role, phone)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + staffColumns

type CreateStaffParams struct {
	Name         string `json:"name"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
	Phone        string `json:"phone"`
}

func (q *Queries) CreateStaff(ctx context.Context, arg CreateStaffParams) (Staff, error) {
	row := q.db.QueryRow(ctx, createStaff,
		arg.Name,
		arg.Username,
		arg.PasswordHash,
		arg.Role,
		arg.Phone,
	)
	return scanStaff(row)
}

const deleteStaff = `-- name: DeleteStaff :one
DELETE FROM staff WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteStaff(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteStaff, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

const getStaff = `-- name: GetStaff :one
SELECT ` + staffColumns + ` FROM staff WHERE id = $1
`

func (q *Queries) GetStaff(ctx context.Context, id uuid.UUID) (Staff, error) {
	return scanStaff(q.db.QueryRow(ctx, getStaff, id))
}

const getStaffByUsername = `-- name: GetStaffByUsername :one
SELECT ` + staffColumns + ` FROM staff WHERE username = $1
`

func (q *Queries) GetStaffByUsername(ctx context.Context, username string) (Staff, error) {
	return scanStaff(q.db.QueryRow(ctx, getStaffByUsername, username))
}

const listStaff = `-- name: ListStaff :many
SELECT ` + staffColumns + ` FROM staff ORDER BY name
`

func (q *Queries) ListStaff(ctx context.Context) ([]Staff, error) {
	rows, err := q.db.Query(ctx, listStaff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Staff{}
	for rows.Next() {
		i, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateStaff = `-- name: UpdateStaff :one
UPDATE staff SET name = $2, username = $3, role = $4, phone = $5
WHERE id = $1
RETURNING ` + staffColumns

type UpdateStaffParams struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Phone    string    `json:"phone"`
}

func (q *Queries) UpdateStaff(ctx context.Context, arg UpdateStaffParams) (Staff, error) {
	row := q.db.QueryRow(ctx, updateStaff,
		arg.ID,
		arg.Name,
		arg.Username,
		arg.Role,
		arg.Phone,
	)
	return scanStaff(row)
}

const updateStaffPassword = `-- name: UpdateStaffPassword :one
UPDATE staff SET password_hash = $2 WHERE id = $1
RETURNING ` + staffColumns

type UpdateStaffPasswordParams struct {
	ID           uuid.UUID `json:"id"`
	PasswordHash string    `json:"password_hash"`
}

func (q *Queries) UpdateStaffPassword(ctx context.Context, arg UpdateStaffPasswordParams) (Staff, error) {
	return scanStaff(q.db.QueryRow(ctx, updateStaffPassword, arg.ID, arg.PasswordHash))
}
