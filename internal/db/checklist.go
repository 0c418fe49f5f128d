package db

import (
	"context"

	"github.com/abbakary/portals/internal/model"
)

const categoryColumns = `id, code, name, description, display_order, created_at, updated_at`
const itemColumns = `id, category_id, code, title, description, requires_photo, is_active, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (model.InspectionCategory, error) {
	var c model.InspectionCategory
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.DisplayOrder, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanItem(row interface{ Scan(...any) error }) (model.ChecklistItem, error) {
	var item model.ChecklistItem
	err := row.Scan(&item.ID, &item.CategoryID, &item.Code, &item.Title, &item.Description, &item.RequiresPhoto, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

// UpsertCategory inserts or refreshes a category keyed by code and returns
// the stored row.
func (q *Queries) UpsertCategory(ctx context.Context, c model.InspectionCategory) (model.InspectionCategory, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO inspection_categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			display_order = EXCLUDED.display_order,
			updated_at = now()
		RETURNING `+categoryColumns+`
	`, c.ID, c.Code, c.Name, c.Description, c.DisplayOrder, c.CreatedAt, c.UpdatedAt)
	return scanCategory(row)
}

// UpsertChecklistItem inserts or refreshes an item keyed by (category, code).
func (q *Queries) UpsertChecklistItem(ctx context.Context, item model.ChecklistItem) (model.ChecklistItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO checklist_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (category_id, code) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			requires_photo = EXCLUDED.requires_photo,
			is_active = true,
			updated_at = now()
		RETURNING `+itemColumns+`
	`, item.ID, item.CategoryID, item.Code, item.Title, item.Description, item.RequiresPhoto, item.IsActive, item.CreatedAt, item.UpdatedAt)
	return scanItem(row)
}

func (q *Queries) CreateChecklistItem(ctx context.Context, item model.ChecklistItem) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO checklist_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, item.ID, item.CategoryID, item.Code, item.Title, item.Description, item.RequiresPhoto, item.IsActive, item.CreatedAt, item.UpdatedAt)
	return err
}

func (q *Queries) ListCategories(ctx context.Context) ([]model.InspectionCategory, error) {
	rows, err := q.db.Query(ctx, `SELECT `+categoryColumns+` FROM inspection_categories ORDER BY display_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]model.InspectionCategory, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (q *Queries) ListChecklistItems(ctx context.Context, activeOnly bool) ([]model.ChecklistItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM checklist_items
		WHERE NOT $1 OR is_active
		ORDER BY category_id, code
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ChecklistItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (q *Queries) ListChecklistItemsByCategory(ctx context.Context, categoryID string) ([]model.ChecklistItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM checklist_items
		WHERE category_id = $1
		ORDER BY code
	`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ChecklistItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (q *Queries) GetChecklistItem(ctx context.Context, itemID string) (model.ChecklistItem, error) {
	row := q.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM checklist_items WHERE id = $1`, itemID)
	return scanItem(row)
}

func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM inspection_categories`).Scan(&count)
	return count, err
}

func (q *Queries) CountChecklistItems(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM checklist_items`).Scan(&count)
	return count, err
}
