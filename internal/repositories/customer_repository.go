package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"ospreyBack/internal/models"
)

type CustomerRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewCustomerRepository(db *sql.DB, d Dialect) *CustomerRepository {
	return &CustomerRepository{DB: db, Dialect: d}
}

const customerColumns = `id, full_name, email, phone, address, hubspot_contact_id, created_at, updated_at`

func (r *CustomerRepository) Create(ctx context.Context, c models.Customer) (models.Customer, error) {
	var address any
	if len(c.Address) > 0 {
		address = string(c.Address)
	}
	query := `INSERT INTO customers (id, full_name, email, phone, address, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), c.ID, c.FullName, c.Email, c.Phone, address, c.CreatedAt.UTC())
	if err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`
	return r.scanOne(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), id))
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = ? LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), email))
}

// Search matches email or full name, case-insensitively, returning at most limit rows.
func (r *CustomerRepository) Search(ctx context.Context, q string, limit int) ([]models.Customer, error) {
	pattern := likePattern(q)
	query := `SELECT ` + customerColumns + ` FROM customers
		WHERE LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?
		ORDER BY created_at DESC LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) UpdateHubSpotContactID(ctx context.Context, id, contactID string) error {
	query := `UPDATE customers SET hubspot_contact_id = ?, updated_at = ? WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), contactID, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *CustomerRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n)
	return n, err
}

func (r *CustomerRepository) scanOne(row *sql.Row) (models.Customer, error) {
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Customer{}, models.ErrNoRecord
	}
	return c, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(s scanner) (models.Customer, error) {
	var (
		c       models.Customer
		address sql.NullString
	)
	err := s.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &address, &c.HubSpotContactID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.Customer{}, err
	}
	if address.Valid && address.String != "" {
		c.Address = json.RawMessage(address.String)
	}
	return c, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNoRecord
	}
	return nil
}
