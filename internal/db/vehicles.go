package db

import (
	"context"

	"github.com/abbakary/portals/internal/model"
)

const vehicleColumns = `id, customer_id, vin, license_plate, make, model, year, vehicle_type, axle_configuration, mileage, notes, created_at, updated_at`

func scanVehicle(row interface{ Scan(...any) error }) (model.Vehicle, error) {
	var v model.Vehicle
	err := row.Scan(
		&v.ID,
		&v.CustomerID,
		&v.VIN,
		&v.LicensePlate,
		&v.Make,
		&v.Model,
		&v.Year,
		&v.VehicleType,
		&v.AxleConfiguration,
		&v.Mileage,
		&v.Notes,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	return v, err
}

// VehicleFilter restricts visible rows. CustomerID limits to one customer's
// fleet; AssignedInspectorID limits to vehicles referenced by that
// inspector's assignments. Both empty means unrestricted.
type VehicleFilter struct {
	CustomerID          string
	AssignedInspectorID string
}

func (q *Queries) CreateVehicle(ctx context.Context, v model.Vehicle) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO vehicles (`+vehicleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, v.ID, v.CustomerID, v.VIN, v.LicensePlate, v.Make, v.Model, v.Year, v.VehicleType, v.AxleConfiguration, v.Mileage, v.Notes, v.CreatedAt, v.UpdatedAt)
	return err
}

func (q *Queries) GetVehicle(ctx context.Context, vehicleID string, filter VehicleFilter) (model.Vehicle, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE id = $1
		  AND ($2 = '' OR customer_id = $2)
		  AND ($3 = '' OR EXISTS (
			SELECT 1 FROM vehicle_assignments
			WHERE vehicle_assignments.vehicle_id = vehicles.id
			  AND vehicle_assignments.inspector_id = $3
		  ))
	`, vehicleID, filter.CustomerID, filter.AssignedInspectorID)
	return scanVehicle(row)
}

func (q *Queries) ListVehicles(ctx context.Context, filter VehicleFilter, limit int) ([]model.Vehicle, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := q.db.Query(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE ($1 = '' OR customer_id = $1)
		  AND ($2 = '' OR EXISTS (
			SELECT 1 FROM vehicle_assignments
			WHERE vehicle_assignments.vehicle_id = vehicles.id
			  AND vehicle_assignments.inspector_id = $2
		  ))
		ORDER BY customer_id, license_plate
		LIMIT $3
	`, filter.CustomerID, filter.AssignedInspectorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := make([]model.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

type VehicleUpdate struct {
	CustomerID        *string
	VIN               *string
	LicensePlate      *string
	Make              *string
	Model             *string
	Year              *int
	VehicleType       *string
	AxleConfiguration *string
	Mileage           *int
	Notes             *string
}

func (q *Queries) UpdateVehicle(ctx context.Context, vehicleID string, update VehicleUpdate) (model.Vehicle, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE vehicles SET
			customer_id = COALESCE($2, customer_id),
			vin = COALESCE($3, vin),
			license_plate = COALESCE($4, license_plate),
			make = COALESCE($5, make),
			model = COALESCE($6, model),
			year = COALESCE($7, year),
			vehicle_type = COALESCE($8, vehicle_type),
			axle_configuration = COALESCE($9, axle_configuration),
			mileage = COALESCE($10, mileage),
			notes = COALESCE($11, notes),
			updated_at = now()
		WHERE id = $1
		RETURNING `+vehicleColumns+`
	`, vehicleID, update.CustomerID, update.VIN, update.LicensePlate, update.Make, update.Model, update.Year, update.VehicleType, update.AxleConfiguration, update.Mileage, update.Notes)
	return scanVehicle(row)
}

func (q *Queries) DeleteVehicle(ctx context.Context, vehicleID string) (bool, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, vehicleID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) CountVehicles(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM vehicles`).Scan(&count)
	return count, err
}
