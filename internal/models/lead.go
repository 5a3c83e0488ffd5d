package models

import "time"

// LeadPayload is the public lead form submission. Extra keys are kept in Extra
// and stored alongside the known columns.
type LeadPayload struct {
	Name              string         `json:"name"`
	Email             string         `json:"email,omitempty"`
	Phone             string         `json:"phone,omitempty"`
	Address           string         `json:"address,omitempty"`
	City              string         `json:"city,omitempty"`
	Zip               string         `json:"zip,omitempty"`
	ServiceType       string         `json:"service_type,omitempty"`
	Service           string         `json:"service,omitempty"`
	Message           string         `json:"message,omitempty"`
	UTMSource         string         `json:"utm_source,omitempty"`
	UTMMedium         string         `json:"utm_medium,omitempty"`
	UTMCampaign       string         `json:"utm_campaign,omitempty"`
	Geo               string         `json:"geo,omitempty"`
	NotificationEmail string         `json:"notification_email,omitempty"`
	Extra             map[string]any `json:"-"`
}

// LeadRecord is the normalized row written to the leads table.
type LeadRecord struct {
	ID                string
	Name              string
	Email             *string
	Phone             *string
	Address           *string
	City              *string
	Zip               *string
	ServiceType       string
	Message           *string
	UTMSource         *string
	UTMMedium         *string
	UTMCampaign       *string
	Geo               *string
	NotificationEmail *string
	Extra             map[string]any
	CreatedAt         time.Time
}

type Lead struct {
	ID               string     `json:"id"`
	FullName         string     `json:"full_name"`
	Email            *string    `json:"email"`
	Phone            *string    `json:"phone"`
	City             *string    `json:"city"`
	Zip              *string    `json:"zip"`
	ServiceType      *string    `json:"service_type"`
	UTMSource        *string    `json:"utm_source"`
	HubSpotContactID *string    `json:"hubspot_contact_id"`
	HubSpotDealID    *string    `json:"hubspot_deal_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

type LeadStatus string

const (
	LeadCreated  LeadStatus = "created"
	LeadSkipped  LeadStatus = "skipped"
	LeadDisabled LeadStatus = "disabled"
)
