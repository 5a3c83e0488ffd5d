package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

var ErrSMSNotConfigured = errors.New("twilio: credentials not configured")

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
	BaseURL     string
}

// TwilioClient sends SMS through the Messages API.
type TwilioClient struct {
	httpClient *http.Client
	cfg        TwilioConfig
}

func NewTwilioClient(httpClient *http.Client, cfg TwilioConfig) *TwilioClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = twilioBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &TwilioClient{httpClient: httpClient, cfg: cfg}
}

func (c *TwilioClient) Configured() bool {
	return c != nil && c.cfg.AccountSID != "" && c.cfg.AuthToken != "" && c.cfg.PhoneNumber != ""
}

// SendSMS returns the message SID.
func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) (string, error) {
	if !c.Configured() {
		return "", ErrSMSNotConfigured
	}
	form := url.Values{}
	form.Set("From", c.cfg.PhoneNumber)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.cfg.BaseURL, url.PathEscape(c.cfg.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("twilio: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var out struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	return out.SID, nil
}
