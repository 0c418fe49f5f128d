package db

import (
	"context"
	"time"

	"github.com/abbakary/portals/internal/model"
)

const inspectionColumns = `id, reference, assignment_id, vehicle_id, customer_id, inspector_id, status, started_at, completed_at, odometer_reading, general_notes, created_at, updated_at`

func scanInspection(row interface{ Scan(...any) error }) (model.Inspection, error) {
	var ins model.Inspection
	err := row.Scan(
		&ins.ID,
		&ins.Reference,
		&ins.AssignmentID,
		&ins.VehicleID,
		&ins.CustomerID,
		&ins.InspectorID,
		&ins.Status,
		&ins.StartedAt,
		&ins.CompletedAt,
		&ins.OdometerReading,
		&ins.GeneralNotes,
		&ins.CreatedAt,
		&ins.UpdatedAt,
	)
	return ins, err
}

// InspectionFilter restricts visible rows to one customer's or one
// inspector's inspections. Both empty means unrestricted.
type InspectionFilter struct {
	CustomerID  string
	InspectorID string
}

func (q *Queries) CreateInspection(ctx context.Context, ins model.Inspection) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO inspections (`+inspectionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, ins.ID, ins.Reference, ins.AssignmentID, ins.VehicleID, ins.CustomerID, ins.InspectorID, ins.Status, ins.StartedAt, ins.CompletedAt, ins.OdometerReading, ins.GeneralNotes, ins.CreatedAt, ins.UpdatedAt)
	return err
}

func (q *Queries) GetInspection(ctx context.Context, inspectionID string, filter InspectionFilter) (model.Inspection, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+inspectionColumns+`
		FROM inspections
		WHERE id = $1
		  AND ($2 = '' OR customer_id = $2)
		  AND ($3 = '' OR inspector_id = $3)
	`, inspectionID, filter.CustomerID, filter.InspectorID)
	return scanInspection(row)
}

func (q *Queries) ListInspections(ctx context.Context, filter InspectionFilter, limit int) ([]model.Inspection, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := q.db.Query(ctx, `
		SELECT `+inspectionColumns+`
		FROM inspections
		WHERE ($1 = '' OR customer_id = $1)
		  AND ($2 = '' OR inspector_id = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, filter.CustomerID, filter.InspectorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inspections := make([]model.Inspection, 0)
	for rows.Next() {
		ins, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		inspections = append(inspections, ins)
	}
	return inspections, rows.Err()
}

type InspectionUpdate struct {
	AssignmentID    *string
	ClearAssignment bool
	VehicleID       *string
	CustomerID      *string
	InspectorID     *string
	Status          *string
	StartedAt       *time.Time
	OdometerReading *int
	GeneralNotes    *string
}

func (q *Queries) UpdateInspection(ctx context.Context, inspectionID string, update InspectionUpdate) (model.Inspection, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE inspections SET
			assignment_id = CASE WHEN $3 THEN NULL ELSE COALESCE($2, assignment_id) END,
			vehicle_id = COALESCE($4, vehicle_id),
			customer_id = COALESCE($5, customer_id),
			inspector_id = COALESCE($6, inspector_id),
			status = COALESCE($7, status),
			started_at = COALESCE($8, started_at),
			odometer_reading = COALESCE($9, odometer_reading),
			general_notes = COALESCE($10, general_notes),
			updated_at = now()
		WHERE id = $1
		RETURNING `+inspectionColumns+`
	`, inspectionID, update.AssignmentID, update.ClearAssignment, update.VehicleID, update.CustomerID, update.InspectorID, update.Status, update.StartedAt, update.OdometerReading, update.GeneralNotes)
	return scanInspection(row)
}

// SetInspectionStatus advances the workflow status. completedAt is applied
// only when the row has no completed_at yet.
func (q *Queries) SetInspectionStatus(ctx context.Context, inspectionID, status string, completedAt *time.Time) (model.Inspection, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE inspections SET
			status = $2,
			completed_at = COALESCE(completed_at, $3),
			updated_at = now()
		WHERE id = $1
		RETURNING `+inspectionColumns+`
	`, inspectionID, status, completedAt)
	return scanInspection(row)
}

func (q *Queries) DeleteInspection(ctx context.Context, inspectionID string) (bool, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM inspections WHERE id = $1`, inspectionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) CountInspections(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM inspections`).Scan(&count)
	return count, err
}

func (q *Queries) InsertItemResponse(ctx context.Context, r model.ItemResponse) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO inspection_item_responses (id, inspection_id, checklist_item_id, result, severity, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.ID, r.InspectionID, r.ChecklistItemID, r.Result, r.Severity, r.Notes, r.CreatedAt, r.UpdatedAt)
	return err
}

// DeleteItemResponses removes every response of an inspection; photos go
// with them via ON DELETE CASCADE.
func (q *Queries) DeleteItemResponses(ctx context.Context, inspectionID string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM inspection_item_responses WHERE inspection_id = $1`, inspectionID)
	return err
}

func (q *Queries) InsertPhoto(ctx context.Context, p model.InspectionPhoto) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO inspection_photos (id, response_id, image_path, caption, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.ResponseID, p.ImagePath, p.Caption, p.CreatedAt)
	return err
}

// ListResponseDetails loads an inspection's responses joined with checklist
// item and category data, in report order: category display order first,
// then item code.
func (q *Queries) ListResponseDetails(ctx context.Context, inspectionID string) ([]model.ResponseDetail, error) {
	rows, err := q.db.Query(ctx, `
		SELECT r.id, r.inspection_id, r.checklist_item_id, r.result, r.severity, r.notes, r.created_at, r.updated_at,
		       i.code, i.title, i.requires_photo,
		       c.code, c.name, c.display_order
		FROM inspection_item_responses r
		JOIN checklist_items i ON i.id = r.checklist_item_id
		JOIN inspection_categories c ON c.id = i.category_id
		WHERE r.inspection_id = $1
		ORDER BY c.display_order, i.code
	`, inspectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]model.ResponseDetail, 0)
	for rows.Next() {
		var d model.ResponseDetail
		err := rows.Scan(
			&d.Response.ID,
			&d.Response.InspectionID,
			&d.Response.ChecklistItemID,
			&d.Response.Result,
			&d.Response.Severity,
			&d.Response.Notes,
			&d.Response.CreatedAt,
			&d.Response.UpdatedAt,
			&d.ItemCode,
			&d.ItemTitle,
			&d.RequiresPhoto,
			&d.CategoryCode,
			&d.CategoryName,
			&d.DisplayOrder,
		)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for idx := range details {
		photos, err := q.ListPhotos(ctx, details[idx].Response.ID)
		if err != nil {
			return nil, err
		}
		details[idx].Photos = photos
	}
	return details, nil
}

func (q *Queries) ListPhotos(ctx context.Context, responseID string) ([]model.InspectionPhoto, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, response_id, image_path, caption, created_at
		FROM inspection_photos
		WHERE response_id = $1
		ORDER BY created_at
	`, responseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := make([]model.InspectionPhoto, 0)
	for rows.Next() {
		var p model.InspectionPhoto
		if err := rows.Scan(&p.ID, &p.ResponseID, &p.ImagePath, &p.Caption, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}
