package models

import "time"

const (
	EstimatePending  = "pending"
	EstimateApproved = "approved"
	EstimateRejected = "rejected"
	EstimateExpired  = "expired"
)

func ValidEstimateStatus(status string) bool {
	switch status {
	case EstimatePending, EstimateApproved, EstimateRejected, EstimateExpired:
		return true
	}
	return false
}

type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type Estimate struct {
	ID            string     `json:"id"`
	CustomerID    string     `json:"customer_id"`
	ServiceType   string     `json:"service_type"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	ExpiresAt     time.Time  `json:"expires_at"`
	Notes         *string    `json:"notes"`
	PDFURL        *string    `json:"pdf_url"`
	HubSpotDealID *string    `json:"hubspot_deal_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	Customer      *Customer  `json:"customers,omitempty"`
}

type EstimateRequest struct {
	CustomerID    string     `json:"customer_id,omitempty"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	CustomerName  string     `json:"customer_name,omitempty"`
	ServiceType   string     `json:"service_type"`
	LineItems     []LineItem `json:"line_items"`
	Notes         string     `json:"notes,omitempty"`
	ExpiresDays   *int       `json:"expires_days,omitempty"`
}

type EstimateResult struct {
	EstimateID string    `json:"estimate_id"`
	Amount     float64   `json:"amount"`
	PDFURL     string    `json:"pdf_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// EstimateNotes is the JSON document kept in estimates.notes.
type EstimateNotes struct {
	LineItems     []LineItem `json:"line_items"`
	OriginalNotes *string    `json:"original_notes"`
}
