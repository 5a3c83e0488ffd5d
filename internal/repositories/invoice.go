package repositories

import (
	"context"
	"database/sql"
	"time"

	"ospreyBack/internal/models"
)

type InvoiceRepo struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewInvoiceRepo(db *sql.DB, d Dialect) *InvoiceRepo { return &InvoiceRepo{DB: db, Dialect: d} }

func (r *InvoiceRepo) MarkPaid(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE invoices SET status = 'paid', paid_at = ? WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), at.UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNoRecord
	}
	return nil
}
