// source: tables.sql

package database

import (
	"context"

	"github.com/google/uuid"
)

const createTable = `-- name: CreateTable :one
INSERT INTO restaurant_tables (table_number, capacity) VALUES ($1, $2)
RETURNING id, table_number, capacity, status
`

type CreateTableParams struct {
	TableNumber int32 `json:"table_number"`
	Capacity    int32 `json:"capacity"`
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, createTable, arg.TableNumber, arg.Capacity)
	var i RestaurantTable
	err := row.Scan(&i.ID, &i.TableNumber, &i.Capacity, &i.Status)
	return i, err
}

const getTable = `-- name: GetTable :one
SELECT id, table_number, capacity, status FROM restaurant_tables WHERE id = $1
`

func (q *Queries) GetTable(ctx context.Context, id uuid.UUID) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, getTable, id)
	var i RestaurantTable
	err := row.Scan(&i.ID, &i.TableNumber, &i.Capacity, &i.Status)
	return i, err
}

const listTables = `-- name: ListTables :many
SELECT id, table_number, capacity, status FROM restaurant_tables ORDER BY table_number
`

func (q *Queries) ListTables(ctx context.Context) ([]RestaurantTable, error) {
	rows, err := q.db.Query(ctx, listTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []RestaurantTable{}
	for rows.Next() {
		var i RestaurantTable
		if err := rows.Scan(&i.ID, &i.TableNumber, &i.Capacity, &i.Status); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const resetAllTables = `-- name: ResetAllTables :execrows
UPDATE restaurant_tables SET status = 'Available' WHERE status <> 'Available'
`

func (q *Queries) ResetAllTables(ctx context.Context) (int64, error) {
	result, err := q.db.Exec(ctx, resetAllTables)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const setTableStatus = `-- name: SetTableStatus :one
UPDATE restaurant_tables SET status = $2 WHERE id = $1
RETURNING id, table_number, capacity, status
`

type SetTableStatusParams struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

func (q *Queries) SetTableStatus(ctx context.Context, arg SetTableStatusParams) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, setTableStatus, arg.ID, arg.Status)
	var i RestaurantTable
	err := row.Scan(&i.ID, &i.TableNumber, &i.Capacity, &i.Status)
	return i, err
}
