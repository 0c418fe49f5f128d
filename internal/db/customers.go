package db

import (
	"context"

	"github.com/abbakary/portals/internal/model"
)

const customerColumns = `id, user_id, legal_name, contact_email, contact_phone, address_line1, address_line2, city, state, postal_code, country, notes, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.LegalName,
		&c.ContactEmail,
		&c.ContactPhone,
		&c.AddressLine1,
		&c.AddressLine2,
		&c.City,
		&c.State,
		&c.PostalCode,
		&c.Country,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (q *Queries) CreateCustomer(ctx context.Context, c model.Customer) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, c.ID, c.UserID, c.LegalName, c.ContactEmail, c.ContactPhone, c.AddressLine1, c.AddressLine2, c.City, c.State, c.PostalCode, c.Country, c.Notes, c.CreatedAt, c.UpdatedAt)
	return err
}

func (q *Queries) GetCustomer(ctx context.Context, customerID string) (model.Customer, error) {
	row := q.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, customerID)
	return scanCustomer(row)
}

func (q *Queries) GetCustomerByUserID(ctx context.Context, userID string) (model.Customer, error) {
	row := q.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE user_id = $1`, userID)
	return scanCustomer(row)
}

func (q *Queries) ListCustomers(ctx context.Context, limit int) ([]model.Customer, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := q.db.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY legal_name LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]model.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

type CustomerUpdate struct {
	LegalName    *string
	ContactEmail *string
	ContactPhone *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	PostalCode   *string
	Country      *string
	Notes        *string
}

func (q *Queries) UpdateCustomer(ctx context.Context, customerID string, update CustomerUpdate) (model.Customer, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE customers SET
			legal_name = COALESCE($2, legal_name),
			contact_email = COALESCE($3, contact_email),
			contact_phone = COALESCE($4, contact_phone),
			address_line1 = COALESCE($5, address_line1),
			address_line2 = COALESCE($6, address_line2),
			city = COALESCE($7, city),
			state = COALESCE($8, state),
			postal_code = COALESCE($9, postal_code),
			country = COALESCE($10, country),
			notes = COALESCE($11, notes),
			updated_at = now()
		WHERE id = $1
		RETURNING `+customerColumns+`
	`, customerID, update.LegalName, update.ContactEmail, update.ContactPhone, update.AddressLine1, update.AddressLine2, update.City, update.State, update.PostalCode, update.Country, update.Notes)
	return scanCustomer(row)
}

func (q *Queries) DeleteCustomer(ctx context.Context, customerID string) (bool, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, customerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&count)
	return count, err
}
