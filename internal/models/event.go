package models

import (
	"encoding/json"
	"time"
)

const (
	TopicLeadCreated      = "lead.created"
	TopicBookingCreated   = "booking.created"
	TopicEstimateCreated  = "estimate.created"
	TopicEstimateApproved = "estimate.approved"
	TopicPaymentCreated   = "payment.created"
)

// Event is a domain notification fanned out to the CRM sync, the admin feed
// and staff push.
type Event struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	OccurredAt time.Time       `json:"occurred_at"`
	RequestID  string          `json:"request_id,omitempty"`
	Data       json.RawMessage `json:"data"`
}

type LeadCreatedData struct {
	LeadID      string `json:"lead_id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	City        string `json:"city,omitempty"`
	Zip         string `json:"zip,omitempty"`
	UTMSource   string `json:"utm_source,omitempty"`
	ServiceType string `json:"service_type"`
}

type BookingCreatedData struct {
	CustomerID    string `json:"customer_id"`
	AppointmentID string `json:"appointment_id"`
	JobID         string `json:"job_id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	ServiceType   string `json:"service_type"`
	ScheduledDate string `json:"scheduled_date"`
}

type EstimateCreatedData struct {
	EstimateID  string  `json:"estimate_id"`
	CustomerID  string  `json:"customer_id"`
	Amount      float64 `json:"amount"`
	ServiceType string  `json:"service_type"`
}

type EstimateApprovedData struct {
	EstimateID    string `json:"estimate_id"`
	HubSpotDealID string `json:"hubspot_deal_id"`
}

type PaymentCreatedData struct {
	PaymentIntentID string  `json:"payment_intent_id"`
	CustomerID      string  `json:"customer_id"`
	JobID           string  `json:"job_id,omitempty"`
	Amount          float64 `json:"amount"`
}
