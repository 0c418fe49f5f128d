package db

import (
	"context"

	"github.com/abbakary/portals/internal/model"
)

const reportColumns = `id, inspection_id, summary, recommended_actions, published_at, updated_at`

func scanReport(row interface{ Scan(...any) error }) (model.CustomerReport, error) {
	var r model.CustomerReport
	err := row.Scan(&r.ID, &r.InspectionID, &r.Summary, &r.RecommendedActions, &r.PublishedAt, &r.UpdatedAt)
	return r, err
}

// UpsertCustomerReport writes the report for an inspection, replacing the
// text of an existing one. published_at keeps its original value on
// regeneration.
func (q *Queries) UpsertCustomerReport(ctx context.Context, r model.CustomerReport) (model.CustomerReport, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO customer_reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (inspection_id) DO UPDATE SET
			summary = EXCLUDED.summary,
			recommended_actions = EXCLUDED.recommended_actions,
			updated_at = EXCLUDED.updated_at
		RETURNING `+reportColumns+`
	`, r.ID, r.InspectionID, r.Summary, r.RecommendedActions, r.PublishedAt, r.UpdatedAt)
	return scanReport(row)
}

func (q *Queries) GetReportByInspection(ctx context.Context, inspectionID string) (model.CustomerReport, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+reportColumns+`
		FROM customer_reports
		WHERE inspection_id = $1
	`, inspectionID)
	return scanReport(row)
}
