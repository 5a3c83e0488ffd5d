package pay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

const DefaultTolerance = 5 * time.Minute

var (
	ErrInvalidSignature = errors.New("stripe: invalid webhook signature")
	ErrExpiredSignature = errors.New("stripe: webhook timestamp outside tolerance")
)

// VerifyHMAC validates a hex signature using HMAC-SHA256.
func VerifyHMAC(body []byte, signature, secret string) bool {
	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(computeHMAC(body, secret), sigBytes)
}

func computeHMAC(body []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

// SignPayload builds a Stripe-Signature header value for payload at ts.
func SignPayload(payload []byte, secret string, ts time.Time) string {
	t := strconv.FormatInt(ts.Unix(), 10)
	signed := append([]byte(t+"."), payload...)
	return "t=" + t + ",v1=" + hex.EncodeToString(computeHMAC(signed, secret))
}

// VerifySignature checks a Stripe-Signature header ("t=...,v1=...") against
// the raw payload. Any v1 entry may match.
func VerifySignature(payload []byte, header, secret string, now time.Time, tolerance time.Duration) error {
	if secret == "" || header == "" {
		return ErrInvalidSignature
	}
	var (
		ts   int64
		sigs []string
	)
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			ts = n
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return ErrInvalidSignature
	}
	if tolerance > 0 {
		diff := now.Sub(time.Unix(ts, 0))
		if diff > tolerance || diff < -tolerance {
			return ErrExpiredSignature
		}
	}

	signed := append([]byte(strconv.FormatInt(ts, 10)+"."), payload...)
	for _, sig := range sigs {
		if VerifyHMAC(signed, sig, secret) {
			return nil
		}
	}
	return ErrInvalidSignature
}

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object PaymentIntent `json:"object"`
	} `json:"data"`
}

func ParseEvent(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, err
	}
	if ev.Type == "" {
		return Event{}, errors.New("stripe: event type missing")
	}
	return ev, nil
}
