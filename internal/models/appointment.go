package models

import (
	"encoding/json"
	"time"
)

type Appointment struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id"`
	JobID         *string         `json:"job_id"`
	ScheduledTime time.Time       `json:"scheduled_time"`
	Address       json.RawMessage `json:"address,omitempty"`
	Status        string          `json:"status"`
	Notes         *string         `json:"notes"`
	HubSpotDealID *string         `json:"hubspot_deal_id"`
	CreatedAt     time.Time       `json:"created_at"`
	Customer      *Customer       `json:"customers,omitempty"`
	Job           *Job            `json:"jobs,omitempty"`
}

type BookingRequest struct {
	ServiceType   string `json:"service_type"`
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Notes         string `json:"notes,omitempty"`
}

type BookingResult struct {
	AppointmentID string `json:"appointment_id"`
	JobID         string `json:"job_id"`
	CustomerID    string `json:"customer_id"`
}
