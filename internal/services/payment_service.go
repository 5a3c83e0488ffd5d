package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ospreyBack/internal/models"
	"ospreyBack/internal/pay"
	"ospreyBack/internal/reqctx"
)

type PaymentService struct {
	PaymentRepo   PaymentStore
	CustomerRepo  CustomerStore
	InvoiceRepo   InvoiceStore
	Gateway       PaymentGateway
	WebhookSecret string
	Events        EventPublisher
	Log           *zap.Logger
	Now           func() time.Time
}

func paymentDescription(req models.PaymentRequest) string {
	if req.Description != "" {
		return req.Description
	}
	ref := req.JobID
	if ref == "" {
		ref = req.InvoiceID
	}
	if ref == "" {
		ref = "service"
	}
	return "Payment for " + ref
}

// CreatePayment opens a Stripe PaymentIntent for the customer and records a
// pending payment for it.
func (s *PaymentService) CreatePayment(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error) {
	if req.Amount <= 0 || req.CustomerID == "" {
		return models.PaymentResult{}, models.NewValidationError("", "Amount and customer ID required")
	}
	customer, err := s.CustomerRepo.GetByID(ctx, req.CustomerID)
	if errors.Is(err, models.ErrNoRecord) {
		return models.PaymentResult{}, models.ErrCustomerNotFound
	}
	if err != nil {
		return models.PaymentResult{}, err
	}
	if s.Gateway == nil || !s.Gateway.Configured() {
		return models.PaymentResult{}, models.ErrProviderNotConfigured
	}

	intent, err := s.Gateway.CreatePaymentIntent(ctx, pay.PaymentIntentRequest{
		Amount:       req.Amount,
		Currency:     "usd",
		Description:  paymentDescription(req),
		ReceiptEmail: deref(customer.Email),
		Metadata: map[string]string{
			"customer_id": req.CustomerID,
			"job_id":      req.JobID,
			"invoice_id":  req.InvoiceID,
		},
	})
	if err != nil {
		return models.PaymentResult{}, err
	}

	log := reqctx.Logger(ctx, nopIfNil(s.Log))
	now := s.now()
	_, err = s.PaymentRepo.Create(ctx, models.Payment{
		ID:                    uuid.NewString(),
		CustomerID:            req.CustomerID,
		JobID:                 nilIfEmpty(req.JobID),
		InvoiceID:             nilIfEmpty(req.InvoiceID),
		Amount:                req.Amount,
		StripePaymentIntentID: intent.ID,
		Status:                models.PaymentPending,
		CreatedAt:             now,
	})
	if err != nil {
		log.Error("payment record failed", zap.String("payment_intent_id", intent.ID), zap.Error(err))
	}

	if req.InvoiceID != "" && s.InvoiceRepo != nil {
		if err := s.InvoiceRepo.MarkPaid(ctx, req.InvoiceID, now); err != nil {
			log.Warn("invoice update failed", zap.String("invoice_id", req.InvoiceID), zap.Error(err))
		}
	}

	publishEvent(ctx, s.Events, log, models.TopicPaymentCreated, models.PaymentCreatedData{
		PaymentIntentID: intent.ID,
		CustomerID:      req.CustomerID,
		JobID:           req.JobID,
		Amount:          req.Amount,
	})

	return models.PaymentResult{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id string) (models.Payment, error) {
	p, err := s.PaymentRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Payment{}, models.ErrPaymentNotFound
	}
	return p, err
}

func (s *PaymentService) ListCustomerPayments(ctx context.Context, customerID string) ([]models.Payment, error) {
	return s.PaymentRepo.ListByCustomer(ctx, customerID)
}

// HandleWebhook verifies a Stripe event and applies payment intent outcomes.
// Unrelated event types are acknowledged without changes.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.WebhookSecret == "" {
		return models.ErrProviderNotConfigured
	}
	now := s.now()
	if err := pay.VerifySignature(payload, signature, s.WebhookSecret, now, pay.DefaultTolerance); err != nil {
		return err
	}
	ev, err := pay.ParseEvent(payload)
	if err != nil {
		return models.NewValidationError("", "Invalid event payload")
	}

	log := reqctx.Logger(ctx, nopIfNil(s.Log)).With(zap.String("stripe_event", ev.Type))
	var (
		status string
		paidAt *time.Time
	)
	switch ev.Type {
	case pay.EventPaymentSucceeded:
		status, paidAt = models.PaymentCompleted, &now
	case pay.EventPaymentFailed:
		status = models.PaymentFailed
	default:
		log.Debug("stripe event ignored")
		return nil
	}

	intentID := ev.Data.Object.ID
	err = s.PaymentRepo.MarkByIntent(ctx, intentID, status, paidAt)
	if errors.Is(err, models.ErrNoRecord) {
		log.Warn("no payment recorded for intent", zap.String("payment_intent_id", intentID))
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("payment status updated", zap.String("payment_intent_id", intentID), zap.String("status", status))
	return nil
}

func (s *PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
