package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ospreyBack/internal/models"
)

type PaymentRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewPaymentRepository(db *sql.DB, d Dialect) *PaymentRepository {
	return &PaymentRepository{DB: db, Dialect: d}
}

const paymentColumns = `id, customer_id, job_id, invoice_id, amount, stripe_payment_intent_id, status, paid_at, created_at`

func (r *PaymentRepository) Create(ctx context.Context, p models.Payment) (models.Payment, error) {
	query := `INSERT INTO payments (` + paymentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query),
		p.ID, p.CustomerID, p.JobID, p.InvoiceID, p.Amount, p.StripePaymentIntentID, p.Status, utcPtr(p.PaidAt), p.CreatedAt.UTC())
	if err != nil {
		return models.Payment{}, err
	}
	return p, nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`
	var p models.Payment
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), id).Scan(paymentDest(&p)...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Payment{}, models.ErrNoRecord
	}
	return p, err
}

func (r *PaymentRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE customer_id = ? ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(paymentDest(&p)...); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkByIntent updates the payment recorded for a Stripe PaymentIntent.
func (r *PaymentRepository) MarkByIntent(ctx context.Context, intentID, status string, paidAt *time.Time) error {
	query := `UPDATE payments SET status = ?, paid_at = COALESCE(?, paid_at) WHERE stripe_payment_intent_id = ?`
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), status, utcPtr(paidAt), intentID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PaymentRepository) SumCompletedSince(ctx context.Context, since time.Time) (float64, error) {
	query := `SELECT SUM(amount) FROM payments WHERE status = ? AND paid_at >= ?`
	var sum sql.NullFloat64
	if err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), models.PaymentCompleted, since.UTC()).Scan(&sum); err != nil {
		return 0, err
	}
	return sum.Float64, nil
}

func paymentDest(p *models.Payment) []any {
	return []any{&p.ID, &p.CustomerID, &p.JobID, &p.InvoiceID, &p.Amount, &p.StripePaymentIntentID, &p.Status, &p.PaidAt, &p.CreatedAt}
}
