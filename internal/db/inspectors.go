package db

import (
	"context"

	"github.com/abbakary/portals/internal/model"
)

const inspectorColumns = `id, user_id, badge_id, certifications, is_active, max_daily_inspections, created_at, updated_at`

func scanInspector(row interface{ Scan(...any) error }) (model.InspectorProfile, error) {
	var p model.InspectorProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.BadgeID,
		&p.Certifications,
		&p.IsActive,
		&p.MaxDailyInspections,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (q *Queries) CreateInspector(ctx context.Context, p model.InspectorProfile) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO inspector_profiles (`+inspectorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.UserID, p.BadgeID, p.Certifications, p.IsActive, p.MaxDailyInspections, p.CreatedAt, p.UpdatedAt)
	return err
}

func (q *Queries) GetInspector(ctx context.Context, inspectorID string) (model.InspectorProfile, error) {
	row := q.db.QueryRow(ctx, `SELECT `+inspectorColumns+` FROM inspector_profiles WHERE id = $1`, inspectorID)
	return scanInspector(row)
}

func (q *Queries) GetInspectorByUserID(ctx context.Context, userID string) (model.InspectorProfile, error) {
	row := q.db.QueryRow(ctx, `SELECT `+inspectorColumns+` FROM inspector_profiles WHERE user_id = $1`, userID)
	return scanInspector(row)
}

func (q *Queries) ListInspectors(ctx context.Context, limit int) ([]model.InspectorProfile, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := q.db.Query(ctx, `SELECT `+inspectorColumns+` FROM inspector_profiles ORDER BY badge_id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inspectors := make([]model.InspectorProfile, 0)
	for rows.Next() {
		p, err := scanInspector(rows)
		if err != nil {
			return nil, err
		}
		inspectors = append(inspectors, p)
	}
	return inspectors, rows.Err()
}

type InspectorUpdate struct {
	BadgeID             *string
	Certifications      *string
	IsActive            *bool
	MaxDailyInspections *int
}

func (q *Queries) UpdateInspector(ctx context.Context, inspectorID string, update InspectorUpdate) (model.InspectorProfile, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE inspector_profiles SET
			badge_id = COALESCE($2, badge_id),
			certifications = COALESCE($3, certifications),
			is_active = COALESCE($4, is_active),
			max_daily_inspections = COALESCE($5, max_daily_inspections),
			updated_at = now()
		WHERE id = $1
		RETURNING `+inspectorColumns+`
	`, inspectorID, update.BadgeID, update.Certifications, update.IsActive, update.MaxDailyInspections)
	return scanInspector(row)
}

func (q *Queries) DeleteInspector(ctx context.Context, inspectorID string) (bool, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM inspector_profiles WHERE id = $1`, inspectorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) CountInspectors(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM inspector_profiles`).Scan(&count)
	return count, err
}
