package models

import "time"

var RecurringFrequencies = []string{"weekly", "biweekly", "monthly", "quarterly", "semiannual", "annual"}

type RecurringService struct {
	ID              string     `json:"id"`
	CustomerID      string     `json:"customer_id"`
	ServiceType     string     `json:"service_type"`
	Frequency       string     `json:"frequency"`
	NextServiceDate string     `json:"next_service_date"`
	Active          bool       `json:"active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	Customer        *Customer  `json:"customers,omitempty"`
}
