package db

import (
	"context"

	"github.com/abbakary/portals/internal/model"
)

const assignmentColumns = `id, vehicle_id, inspector_id, assigned_by, scheduled_for, status, remarks, created_at, updated_at`

func scanAssignment(row interface{ Scan(...any) error }) (model.VehicleAssignment, error) {
	var a model.VehicleAssignment
	err := row.Scan(
		&a.ID,
		&a.VehicleID,
		&a.InspectorID,
		&a.AssignedBy,
		&a.ScheduledFor,
		&a.Status,
		&a.Remarks,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (q *Queries) CreateAssignment(ctx context.Context, a model.VehicleAssignment) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO vehicle_assignments (`+assignmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, a.ID, a.VehicleID, a.InspectorID, a.AssignedBy, a.ScheduledFor, a.Status, a.Remarks, a.CreatedAt, a.UpdatedAt)
	return err
}

func (q *Queries) GetAssignment(ctx context.Context, assignmentID, inspectorID string) (model.VehicleAssignment, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+assignmentColumns+`
		FROM vehicle_assignments
		WHERE id = $1 AND ($2 = '' OR inspector_id = $2)
	`, assignmentID, inspectorID)
	return scanAssignment(row)
}

func (q *Queries) ListAssignments(ctx context.Context, inspectorID string, limit int) ([]model.VehicleAssignment, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := q.db.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM vehicle_assignments
		WHERE ($1 = '' OR inspector_id = $1)
		ORDER BY scheduled_for DESC
		LIMIT $2
	`, inspectorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]model.VehicleAssignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

type AssignmentUpdate struct {
	Status  *string
	Remarks *string
}

func (q *Queries) UpdateAssignment(ctx context.Context, assignmentID string, update AssignmentUpdate) (model.VehicleAssignment, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE vehicle_assignments SET
			status = COALESCE($2, status),
			remarks = COALESCE($3, remarks),
			updated_at = now()
		WHERE id = $1
		RETURNING `+assignmentColumns+`
	`, assignmentID, update.Status, update.Remarks)
	return scanAssignment(row)
}

func (q *Queries) DeleteAssignment(ctx context.Context, assignmentID string) (bool, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM vehicle_assignments WHERE id = $1`, assignmentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
