package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ospreyBack/internal/models"
)

type EstimateRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewEstimateRepository(db *sql.DB, d Dialect) *EstimateRepository {
	return &EstimateRepository{DB: db, Dialect: d}
}

const estimateColumns = `e.id, e.customer_id, e.service_type, e.amount, e.status, e.expires_at, e.notes, e.pdf_url,
	e.hubspot_deal_id, e.created_at, e.updated_at`

func (r *EstimateRepository) Create(ctx context.Context, e models.Estimate) (models.Estimate, error) {
	query := `INSERT INTO estimates (id, customer_id, service_type, amount, status, expires_at, notes, pdf_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query),
		e.ID, e.CustomerID, e.ServiceType, e.Amount, e.Status, e.ExpiresAt.UTC(), e.Notes, e.PDFURL, e.CreatedAt.UTC())
	if err != nil {
		return models.Estimate{}, err
	}
	return e, nil
}

// GetByID returns the estimate with its customer embedded.
func (r *EstimateRepository) GetByID(ctx context.Context, id string) (models.Estimate, error) {
	query := `SELECT ` + estimateColumns + `, ` + prefixed("c", customerColumns) + `
		FROM estimates e JOIN customers c ON c.id = e.customer_id WHERE e.id = ?`
	var (
		e    models.Estimate
		cust models.Customer
		addr sql.NullString
	)
	dest := append(estimateDest(&e),
		&cust.ID, &cust.FullName, &cust.Email, &cust.Phone, &addr, &cust.HubSpotContactID, &cust.CreatedAt, &cust.UpdatedAt)
	if err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), id).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Estimate{}, models.ErrNoRecord
		}
		return models.Estimate{}, err
	}
	if addr.Valid && addr.String != "" {
		cust.Address = []byte(addr.String)
	}
	e.Customer = &cust
	return e, nil
}

func (r *EstimateRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Estimate, error) {
	query := `SELECT ` + estimateColumns + ` FROM estimates e WHERE e.customer_id = ? ORDER BY e.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Estimate{}
	for rows.Next() {
		var e models.Estimate
		if err := rows.Scan(estimateDest(&e)...); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EstimateRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE estimates SET status = ?, updated_at = ? WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *EstimateRepository) SetNotes(ctx context.Context, id, notes string) error {
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`UPDATE estimates SET notes = ? WHERE id = ?`), notes, id)
	return err
}

func (r *EstimateRepository) SetPDFURL(ctx context.Context, id, url string) error {
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`UPDATE estimates SET pdf_url = ? WHERE id = ?`), url, id)
	return err
}

func (r *EstimateRepository) SetHubSpotDealID(ctx context.Context, id, dealID string) error {
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`UPDATE estimates SET hubspot_deal_id = ? WHERE id = ?`), dealID, id)
	return err
}

// ExpirePending marks pending estimates whose expiry has passed and returns
// how many changed.
func (r *EstimateRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE estimates SET status = ?, updated_at = ? WHERE status = ? AND expires_at < ?`
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query),
		models.EstimateExpired, now.UTC(), models.EstimatePending, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func estimateDest(e *models.Estimate) []any {
	return []any{&e.ID, &e.CustomerID, &e.ServiceType, &e.Amount, &e.Status, &e.ExpiresAt, &e.Notes, &e.PDFURL,
		&e.HubSpotDealID, &e.CreatedAt, &e.UpdatedAt}
}
