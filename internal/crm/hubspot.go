// Package crm talks to the HubSpot CRM v3 objects API.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.hubapi.com"

var ErrNotConfigured = errors.New("hubspot: api key not configured")

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hubspot: %d - %s", e.StatusCode, e.Body)
}

type Contact struct {
	Email            string
	FirstName        string
	LastName         string
	Phone            string
	ServiceType      string
	ServiceArea      string
	ZipCode          string
	LeadSource       string
	JobValueEstimate float64
	RecurringService *bool
	NextServiceDate  string
}

func (c Contact) properties() map[string]any {
	props := map[string]any{"email": c.Email}
	set := func(k, v string) {
		if v != "" {
			props[k] = v
		}
	}
	set("firstname", c.FirstName)
	set("lastname", c.LastName)
	set("phone", c.Phone)
	set("service_type", c.ServiceType)
	set("service_area", c.ServiceArea)
	set("zip_code", c.ZipCode)
	set("lead_source", c.LeadSource)
	set("next_service_date", c.NextServiceDate)
	if c.JobValueEstimate != 0 {
		props["job_value_estimate"] = c.JobValueEstimate
	}
	if c.RecurringService != nil {
		props["recurring_service"] = *c.RecurringService
	}
	return props
}

type Deal struct {
	Name        string
	Amount      string
	Stage       string
	Pipeline    string
	ServiceType string
	ServiceArea string
}

func (d Deal) properties() map[string]string {
	props := map[string]string{"dealname": d.Name}
	set := func(k, v string) {
		if v != "" {
			props[k] = v
		}
	}
	set("amount", d.Amount)
	set("dealstage", d.Stage)
	set("pipeline", d.Pipeline)
	set("service_type", d.ServiceType)
	set("service_area", d.ServiceArea)
	return props
}

// Client is a bearer-token HubSpot client.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

func NewClient(httpClient *http.Client, apiKey, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{httpClient: httpClient, apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Client) Configured() bool { return c != nil && c.apiKey != "" }

// FindContactByEmail returns the id of the first contact with the email, or "".
func (c *Client) FindContactByEmail(ctx context.Context, email string) (string, error) {
	body := map[string]any{
		"filterGroups": []any{
			map[string]any{"filters": []any{
				map[string]string{"propertyName": "email", "operator": "EQ", "value": email},
			}},
		},
		"properties": []string{"email", "firstname", "lastname", "phone"},
	}
	var out struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts/search", body, &out); err != nil {
		return "", err
	}
	if len(out.Results) == 0 {
		return "", nil
	}
	return out.Results[0].ID, nil
}

// UpsertContact patches the contact matching the email or creates a new one.
func (c *Client) UpsertContact(ctx context.Context, contact Contact) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	existing := ""
	if contact.Email != "" {
		id, err := c.FindContactByEmail(ctx, contact.Email)
		if err != nil {
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				return "", err
			}
		}
		existing = id
	}

	method, path := http.MethodPost, "/crm/v3/objects/contacts"
	if existing != "" {
		method, path = http.MethodPatch, "/crm/v3/objects/contacts/"+existing
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, method, path, map[string]any{"properties": contact.properties()}, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return existing, nil
	}
	return out.ID, nil
}

// CreateDeal creates a deal associated with the contact.
func (c *Client) CreateDeal(ctx context.Context, deal Deal, contactID string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	body := map[string]any{"properties": deal.properties()}
	if contactID != "" {
		body["associations"] = []any{
			map[string]any{
				"to": map[string]string{"id": contactID},
				"types": []any{
					map[string]any{"associationCategory": "HUBSPOT_DEFINED", "associationTypeId": 3},
				},
			},
		}
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/deals", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) UpdateDeal(ctx context.Context, dealID string, props map[string]string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	return c.do(ctx, http.MethodPatch, "/crm/v3/objects/deals/"+dealID, map[string]any{"properties": props}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// SplitName splits a full name into first name and the remainder.
func SplitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
