// source: campaigns.sql

package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const campaignColumns = `id, name, code, type, discount_value, target_type, target_id, is_active, end_date, created_at`

func scanCampaign(row interface{ Scan(...any) error }) (Campaign, error) {
	var i Campaign
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Code,
		&i.Type,
		&i.DiscountValue,
		&i.TargetType,
		&i.TargetID,
		&i.IsActive,
		&i.EndDate,
		&i.CreatedAt,
	)
	return i, err
}

const createCampaign = `-- name: CreateCampaign :one
INSERT INTO campaigns (name, code, type, discount_value, target_type, target_id, is_active, end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + campaignColumns

type CreateCampaignParams struct {
	Name          string             `json:"name"`
	Code          pgtype.Text        `json:"code"`
	Type          string             `json:"type"`
	DiscountValue pgtype.Numeric     `json:"discount_value"`
	TargetType    string             `json:"target_type"`
	TargetID      pgtype.Text        `json:"target_id"`
	IsActive      bool               `json:"is_active"`
	EndDate       pgtype.Timestamptz `json:"end_date"`
}

func (q *Queries) CreateCampaign(ctx context.Context, arg CreateCampaignParams) (Campaign, error) {
	row := q.db.QueryRow(ctx, createCampaign,
		arg.Name,
		arg.Code,
		arg.Type,
		arg.DiscountValue,
		arg.TargetType,
		arg.TargetID,
		arg.IsActive,
		arg.EndDate,
	)
	return scanCampaign(row)
}

const deleteCampaign = `-- name: DeleteCampaign :one
DELETE FROM campaigns WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteCampaign(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteCampaign, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

const getCampaign = `-- name: GetCampaign :one
SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1
`

func (q *Queries) GetCampaign(ctx context.Context, id uuid.UUID) (Campaign, error) {
	return scanCampaign(q.db.QueryRow(ctx, getCampaign, id))
}

const listActiveCampaigns = `-- name: ListActiveCampaigns :many
SELECT ` + campaignColumns + ` FROM campaigns
WHERE is_active AND (end_date IS NULL OR end_date >= $1)
ORDER BY created_at
`

// ListActiveCampaigns returns campaigns live at now. Coded and auto-apply
// campaigns are both returned; callers decide which ones apply.
func (q *Queries) ListActiveCampaigns(ctx context.Context, now time.Time) ([]Campaign, error) {
	return q.listCampaigns(ctx, listActiveCampaigns, now)
}

const listCampaigns = `-- name: ListCampaigns :many
SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC
`

func (q *Queries) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	return q.listCampaigns(ctx, listCampaigns)
}

const getCampaignByCode = `-- name: GetCampaignByCode :one
SELECT ` + campaignColumns + ` FROM campaigns WHERE lower(code) = lower($1)
`

// GetCampaignByCode ignores activity and expiry so callers can tell an
// unknown coupon from an expired one.
func (q *Queries) GetCampaignByCode(ctx context.Context, code string) (Campaign, error) {
	return scanCampaign(q.db.QueryRow(ctx, getCampaignByCode, code))
}

func (q *Queries) listCampaigns(ctx context.Context, query string, args ...interface{}) ([]Campaign, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Campaign{}
	for rows.Next() {
		i, err := scanCampaign(rows)
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

const updateCampaign = `-- name: UpdateCampaign :one
UPDATE campaigns
SET name = $2, code = $3, type = $4, discount_value = $5, target_type = $6,
    target_id = $7, is_active = $8, end_date = $9
WHERE id = $1
RETURNING ` + campaignColumns

type UpdateCampaignParams struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Code          pgtype.Text        `json:"code"`
	Type          string             `json:"type"`
	DiscountValue pgtype.Numeric     `json:"discount_value"`
	TargetType    string             `json:"target_type"`
	TargetID      pgtype.Text        `json:"target_id"`
	IsActive      bool               `json:"is_active"`
	EndDate       pgtype.Timestamptz `json:"end_date"`
}

func (q *Queries) UpdateCampaign(ctx context.Context, arg UpdateCampaignParams) (Campaign, error) {
	row := q.db.QueryRow(ctx, updateCampaign,
		arg.ID,
		arg.Name,
		arg.Code,
		arg.Type,
		arg.DiscountValue,
		arg.TargetType,
		arg.TargetID,
		arg.IsActive,
		arg.EndDate,
	)
	return scanCampaign(row)
}
