package pay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.stripe.com/v1"

var ErrNotConfigured = errors.New("stripe: secret key not configured")

// APIError is a non-2xx response from Stripe.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("stripe: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("stripe: %d %s", e.StatusCode, e.Message)
}

// Client is a minimal Stripe API client covering PaymentIntents.
type Client struct {
	httpClient *http.Client
	secretKey  string
	baseURL    string
}

// NewClient constructs a Stripe client. An empty baseURL selects the public API.
func NewClient(httpClient *http.Client, secretKey, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		secretKey:  secretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) Configured() bool { return c != nil && c.secretKey != "" }

type PaymentIntentRequest struct {
	Amount       float64
	Currency     string
	Description  string
	ReceiptEmail string
	Metadata     map[string]string
}

type PaymentIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Metadata     map[string]string `json:"metadata"`
}

// ToCents converts a dollar amount to the smallest currency unit.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (c *Client) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (PaymentIntent, error) {
	if !c.Configured() {
		return PaymentIntent{}, ErrNotConfigured
	}
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(ToCents(req.Amount), 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	if req.Description != "" {
		form.Set("description", req.Description)
	}
	if req.ReceiptEmail != "" {
		form.Set("receipt_email", req.ReceiptEmail)
	}
	for k, v := range req.Metadata {
		if v != "" {
			form.Set("metadata["+k+"]", v)
		}
	}

	var intent PaymentIntent
	if err := c.post(ctx, "/payment_intents", form, &intent); err != nil {
		return PaymentIntent{}, err
	}
	return intent, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil {
			apiErr.Type = envelope.Error.Type
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}
	return json.Unmarshal(body, out)
}
