package models

import "time"

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

type Payment struct {
	ID                    string     `json:"id"`
	CustomerID            string     `json:"customer_id"`
	JobID                 *string    `json:"job_id"`
	InvoiceID             *string    `json:"invoice_id"`
	Amount                float64    `json:"amount"`
	StripePaymentIntentID string     `json:"stripe_payment_intent_id"`
	Status                string     `json:"status"`
	PaidAt                *time.Time `json:"paid_at"`
	CreatedAt             time.Time  `json:"created_at"`
}

type PaymentRequest struct {
	InvoiceID   string  `json:"invoice_id,omitempty"`
	JobID       string  `json:"job_id,omitempty"`
	Amount      float64 `json:"amount"`
	CustomerID  string  `json:"customer_id"`
	Description string  `json:"description,omitempty"`
}

type PaymentResult struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

type Invoice struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id"`
	JobID      *string    `json:"job_id"`
	Amount     float64    `json:"amount"`
	Status     string     `json:"status"`
	PaidAt     *time.Time `json:"paid_at"`
}
