package repositories

import (
	"context"
	"database/sql"

	"ospreyBack/internal/models"
)

type RecurringServiceRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewRecurringServiceRepository(db *sql.DB, d Dialect) *RecurringServiceRepository {
	return &RecurringServiceRepository{DB: db, Dialect: d}
}

const recurringColumns = `id, customer_id, service_type, frequency, next_service_date, active, created_at, updated_at`

func (r *RecurringServiceRepository) Create(ctx context.Context, s models.RecurringService) (models.RecurringService, error) {
	query := `INSERT INTO recurring_services (id, customer_id, service_type, frequency, next_service_date, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query),
		s.ID, s.CustomerID, s.ServiceType, s.Frequency, s.NextServiceDate, s.Active, s.CreatedAt.UTC())
	if err != nil {
		return models.RecurringService{}, err
	}
	return s, nil
}

func (r *RecurringServiceRepository) ListActiveByCustomer(ctx context.Context, customerID string) ([]models.RecurringService, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_services
		WHERE customer_id = ? AND active = ? ORDER BY next_service_date ASC`
	return r.list(ctx, query, customerID, true)
}

// ListActiveDueBy returns active services whose next date is on or before date (YYYY-MM-DD).
func (r *RecurringServiceRepository) ListActiveDueBy(ctx context.Context, date string) ([]models.RecurringService, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_services
		WHERE active = ? AND next_service_date <= ? ORDER BY next_service_date ASC`
	return r.list(ctx, query, true, date)
}

func (r *RecurringServiceRepository) ListActive(ctx context.Context) ([]models.RecurringService, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_services WHERE active = ? ORDER BY next_service_date ASC`
	return r.list(ctx, query, true)
}

func (r *RecurringServiceRepository) list(ctx context.Context, query string, args ...any) ([]models.RecurringService, error) {
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.RecurringService{}
	for rows.Next() {
		var (
			s    models.RecurringService
			next string
		)
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.ServiceType, &s.Frequency, &next, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.NextServiceDate = dateOnly(next)
		out = append(out, s)
	}
	return out, rows.Err()
}
