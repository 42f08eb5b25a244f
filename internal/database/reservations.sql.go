// source: reservations.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createReservation = `-- name: CreateReservation :one
INSERT INTO reservations (customer_name, customer_phone, guest_count, reservation_date, reservation_time)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, customer_name, customer_phone, guest_count, reservation_date, reservation_time, status, created_at
`

type CreateReservationParams struct {
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	GuestCount      int32       `json:"guest_count"`
	ReservationDate pgtype.Date `json:"reservation_date"`
	ReservationTime string      `json:"reservation_time"`
}

func (q *Queries) CreateReservation(ctx context.Context, arg CreateReservationParams) (Reservation, error) {
	row := q.db.QueryRow(ctx, createReservation,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.GuestCount,
		arg.ReservationDate,
		arg.ReservationTime,
	)
	var i Reservation
	err := row.Scan(
		&i.ID,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.GuestCount,
		&i.ReservationDate,
		&i.ReservationTime,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}

const deleteReservation = `-- name: DeleteReservation :one
DELETE FROM reservations WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteReservation(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteReservation, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

const listReservations = `-- name: ListReservations :many
SELECT id, customer_name, customer_phone, guest_count, reservation_date, reservation_time, status, created_at
FROM reservations
ORDER BY reservation_date, reservation_time
`

func (q *Queries) ListReservations(ctx context.Context) ([]Reservation, error) {
	rows, err := q.db.Query(ctx, listReservations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Reservation{}
	for rows.Next() {
		var i Reservation
		if err := rows.Scan(
			&i.ID,
			&i.CustomerName,
			&i.CustomerPhone,
			&i.GuestCount,
			&i.ReservationDate,
			&i.ReservationTime,
			&i.Status,
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

const updateReservationStatus = `-- name: UpdateReservationStatus :one
UPDATE reservations SET status = $2 WHERE id = $1
RETURNING id, customer_name, customer_phone, guest_count, reservation_date, reservation_time, status, created_at
`

type UpdateReservationStatusParams struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

func (q *Queries) UpdateReservationStatus(ctx context.Context, arg UpdateReservationStatusParams) (Reservation, error) {
	row := q.db.QueryRow(ctx, updateReservationStatus, arg.ID, arg.Status)
	var i Reservation
	err := row.Scan(
		&i.ID,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.GuestCount,
		&i.ReservationDate,
		&i.ReservationTime,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}
