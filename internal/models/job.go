package models

import "time"

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

func ValidWorkStatus(status string) bool {
	switch status {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Job struct {
	ID            string     `json:"id"`
	CustomerID    string     `json:"customer_id"`
	ServiceType   string     `json:"service_type"`
	Status        string     `json:"status"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	CompletedDate *time.Time `json:"completed_date"`
	TotalAmount   *float64   `json:"total_amount"`
	EstimateID    *string    `json:"estimate_id"`
	HubSpotDealID *string    `json:"hubspot_deal_id"`
	Notes         *string    `json:"notes"`
	Crew          *string    `json:"crew"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	Customer      *Customer  `json:"customers,omitempty"`
}

// JobPatch carries the columns a client may change on a job.
type JobPatch struct {
	Status        *string    `json:"status"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	CompletedDate *time.Time `json:"completed_date"`
	TotalAmount   *float64   `json:"total_amount"`
	Notes         *string    `json:"notes"`
	Crew          *string    `json:"crew"`
}

func (p JobPatch) Empty() bool {
	return p.Status == nil && p.ScheduledDate == nil && p.CompletedDate == nil &&
		p.TotalAmount == nil && p.Notes == nil && p.Crew == nil
}
