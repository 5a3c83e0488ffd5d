package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ospreyBack/internal/models"
	"ospreyBack/internal/notify"
	"ospreyBack/internal/queue"
	"ospreyBack/internal/reqctx"
)

type NotificationService struct {
	SMS  SMSSender
	Push *notify.Pusher
	Log  *zap.Logger
}

// SendSMS delivers a text message and returns the provider message id.
func (s *NotificationService) SendSMS(ctx context.Context, to, message string) (string, error) {
	to, message = strings.TrimSpace(to), strings.TrimSpace(message)
	if to == "" || message == "" {
		return "", models.NewValidationError("", "Phone number and message required")
	}
	if s.SMS == nil || !s.SMS.Configured() {
		return "", models.ErrProviderNotConfigured
	}
	sid, err := s.SMS.SendSMS(ctx, to, message)
	if err != nil {
		reqctx.Logger(ctx, nopIfNil(s.Log)).Error("sms send failed", zap.Error(err))
		return "", err
	}
	return sid, nil
}

// SubscribePush alerts staff about new leads and bookings. It is a no-op
// when push is not configured.
func (s *NotificationService) SubscribePush(q queue.Queue) error {
	if !s.Push.Enabled() {
		return nil
	}
	if err := q.Subscribe(models.TopicLeadCreated, s.pushLead); err != nil {
		return err
	}
	return q.Subscribe(models.TopicBookingCreated, s.pushBooking)
}

func (s *NotificationService) pushLead(ctx context.Context, ev models.Event) error {
	var data models.LeadCreatedData
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return err
	}
	body := fmt.Sprintf("%s requested %s", data.Name, data.ServiceType)
	if data.City != "" {
		body += " in " + data.City
	}
	_, err := s.Push.Notify(ctx, "New lead", body, map[string]string{
		"type":    ev.Topic,
		"lead_id": data.LeadID,
	})
	return err
}

func (s *NotificationService) pushBooking(ctx context.Context, ev models.Event) error {
	var data models.BookingCreatedData
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return err
	}
	body := fmt.Sprintf("%s booked %s on %s", data.FullName, data.ServiceType, data.ScheduledDate)
	_, err := s.Push.Notify(ctx, "New booking", body, map[string]string{
		"type":           ev.Topic,
		"appointment_id": data.AppointmentID,
		"job_id":         data.JobID,
	})
	return err
}
