// source: menu.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const countMenuItemsInCategory = `-- name: CountMenuItemsInCategory :one
SELECT count(*) FROM menu_items WHERE category = $1
`

func (q *Queries) CountMenuItemsInCategory(ctx context.Context, category string) (int64, error) {
	row := q.db.QueryRow(ctx, countMenuItemsInCategory, category)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO menu_categories (name) VALUES ($1)
RETURNING id, name, created_at
`

func (q *Queries) CreateCategory(ctx context.Context, name string) (MenuCategory, error) {
	row := q.db.QueryRow(ctx, createCategory, name)
	var i MenuCategory
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const createMenuItem = `-- name: CreateMenuItem :one
INSERT INTO menu_items (name, description, category, base_price, tag, image_url)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, description, category, base_price, tag, image_url, created_at, updated_at
`

type CreateMenuItemParams struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	BasePrice   string      `json:"base_price"`
	Tag         pgtype.Text `json:"tag"`
	ImageUrl    string      `json:"image_url"`
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.Name,
		arg.Description,
		arg.Category,
		arg.BasePrice,
		arg.Tag,
		arg.ImageUrl,
	)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Category,
		&i.BasePrice,
		&i.Tag,
		&i.ImageUrl,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createVariant = `-- name: CreateVariant :one
INSERT INTO menu_variants (menu_item_id, name, price) VALUES ($1, $2, $3)
RETURNING id, menu_item_id, name, price
`

type CreateVariantParams struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
}

func (q *Queries) CreateVariant(ctx context.Context, arg CreateVariantParams) (MenuVariant, error) {
	row := q.db.QueryRow(ctx, createVariant, arg.MenuItemID, arg.Name, arg.Price)
	var i MenuVariant
	err := row.Scan(&i.ID, &i.MenuItemID, &i.Name, &i.Price)
	return i, err
}

const deleteCategory = `-- name: DeleteCategory :one
DELETE FROM menu_categories WHERE id = $1
RETURNING id, name, created_at
`

func (q *Queries) DeleteCategory(ctx context.Context, id uuid.UUID) (MenuCategory, error) {
	row := q.db.QueryRow(ctx, deleteCategory, id)
	var i MenuCategory
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const deleteMenuItem = `-- name: DeleteMenuItem :one
DELETE FROM menu_items WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteMenuItem, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

const deleteVariantsByMenuItem = `-- name: DeleteVariantsByMenuItem :exec
DELETE FROM menu_variants WHERE menu_item_id = $1
`

func (q *Queries) DeleteVariantsByMenuItem(ctx context.Context, menuItemID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteVariantsByMenuItem, menuItemID)
	return err
}

const getCategory = `-- name: GetCategory :one
SELECT id, name, created_at FROM menu_categories WHERE id = $1
`

func (q *Queries) GetCategory(ctx context.Context, id uuid.UUID) (MenuCategory, error) {
	row := q.db.QueryRow(ctx, getCategory, id)
	var i MenuCategory
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const getMenuItem = `-- name: GetMenuItem :one
SELECT id, name, description, category, base_price, tag, image_url, created_at, updated_at
FROM menu_items WHERE id = $1
`

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	row := q.db.QueryRow(ctx, getMenuItem, id)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Category,
		&i.BasePrice,
		&i.Tag,
		&i.ImageUrl,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listCategories = `-- name: ListCategories :many
SELECT id, name, created_at FROM menu_categories ORDER BY name
`

func (q *Queries) ListCategories(ctx context.Context) ([]MenuCategory, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuCategory{}
	for rows.Next() {
		var i MenuCategory
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listMenuItems = `-- name: ListMenuItems :many
SELECT id, name, description, category, base_price, tag, image_url, created_at, updated_at
FROM menu_items
WHERE ($1::text IS NULL OR category = $1::text)
  AND ($2::text IS NULL OR name ILIKE '%' || $2::text || '%')
ORDER BY category, name
`

type ListMenuItemsParams struct {
	Category pgtype.Text `json:"category"`
	Search   pgtype.Text `json:"search"`
}

func (q *Queries) ListMenuItems(ctx context.Context, arg ListMenuItemsParams) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems, arg.Category, arg.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuItem{}
	for rows.Next() {
		var i MenuItem
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Category,
			&i.BasePrice,
			&i.Tag,
			&i.ImageUrl,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listVariantsByMenuItem = `-- name: ListVariantsByMenuItem :many
SELECT id, menu_item_id, name, price FROM menu_variants
WHERE menu_item_id = $1
ORDER BY name
`

func (q *Queries) ListVariantsByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]MenuVariant, error) {
	rows, err := q.db.Query(ctx, listVariantsByMenuItem, menuItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuVariant{}
	for rows.Next() {
		var i MenuVariant
		if err := rows.Scan(&i.ID, &i.MenuItemID, &i.Name, &i.Price); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateMenuItem = `-- name: UpdateMenuItem :one
UPDATE menu_items
SET name = $2, description = $3, category = $4, base_price = $5, tag = $6, image_url = $7, updated_at = now()
WHERE id = $1
RETURNING id, name, description, category, base_price, tag, image_url, created_at, updated_at
`

type UpdateMenuItemParams struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	BasePrice   string      `json:"base_price"`
	Tag         pgtype.Text `json:"tag"`
	ImageUrl    string      `json:"image_url"`
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Category,
		arg.BasePrice,
		arg.Tag,
		arg.ImageUrl,
	)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Category,
		&i.BasePrice,
		&i.Tag,
		&i.ImageUrl,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
