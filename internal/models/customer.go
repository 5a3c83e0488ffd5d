package models

import (
	"encoding/json"
	"time"
)

type Customer struct {
	ID               string          `json:"id"`
	FullName         string          `json:"full_name"`
	Email            *string         `json:"email"`
	Phone            *string         `json:"phone"`
	Address          json.RawMessage `json:"address,omitempty"`
	HubSpotContactID *string         `json:"hubspot_contact_id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
}
