package pay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"
)

func TestVerifyHMAC(t *testing.T) {
	body := []byte("{\"ok\":true}")
	secret := "secret"
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	if !VerifyHMAC(body, signature, secret) {
		t.Fatal("expected signature to be valid")
	}
	if VerifyHMAC(body, "deadbeef", secret) {
		t.Fatal("unexpected valid signature")
	}
	if VerifyHMAC(body, "not-hex", secret) {
		t.Fatal("unexpected valid signature for non-hex input")
	}
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	now := time.Unix(1_700_000_000, 0)
	header := SignPayload(payload, "whsec", now)

	if err := VerifySignature(payload, header, "whsec", now.Add(time.Minute), DefaultTolerance); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
	if err := VerifySignature(payload, header, "other", now, DefaultTolerance); err != ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if err := VerifySignature(payload, header, "whsec", now.Add(6*time.Minute), DefaultTolerance); err != ErrExpiredSignature {
		t.Fatalf("expected ErrExpiredSignature, got %v", err)
	}
	if err := VerifySignature([]byte(`{}`), header, "whsec", now, DefaultTolerance); err != ErrInvalidSignature {
		t.Fatalf("expected tampered payload to fail, got %v", err)
	}
	if err := VerifySignature(payload, "garbage", "whsec", now, DefaultTolerance); err != ErrInvalidSignature {
		t.Fatalf("expected malformed header to fail, got %v", err)
	}
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"id":"evt_1","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_9"}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Type != EventPaymentFailed || ev.Data.Object.ID != "pi_9" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if _, err := ParseEvent([]byte(`{"id":"evt_2"}`)); err == nil {
		t.Fatal("expected error for event without type")
	}
}
