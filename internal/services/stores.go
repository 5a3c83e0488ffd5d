package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ospreyBack/internal/crm"
	"ospreyBack/internal/models"
	"ospreyBack/internal/pay"
	"ospreyBack/internal/queue"
)

// The store interfaces are satisfied by the repositories package.

type CustomerStore interface {
	Create(ctx context.Context, c models.Customer) (models.Customer, error)
	GetByID(ctx context.Context, id string) (models.Customer, error)
	GetByEmail(ctx context.Context, email string) (models.Customer, error)
	Search(ctx context.Context, q string, limit int) ([]models.Customer, error)
	UpdateHubSpotContactID(ctx context.Context, id, contactID string) error
	Count(ctx context.Context) (int, error)
}

type LeadStore interface {
	ExistsByContact(ctx context.Context, email, phone string) (bool, error)
	Insert(ctx context.Context, rec models.LeadRecord) error
	GetByID(ctx context.Context, id string) (models.Lead, error)
	SetHubSpotContactID(ctx context.Context, id, contactID string) error
	SetHubSpotDealID(ctx context.Context, id, dealID string) error
	CountPendingSync(ctx context.Context) (int, error)
}

type JobStore interface {
	Create(ctx context.Context, j models.Job) (models.Job, error)
	GetByID(ctx context.Context, id string) (models.Job, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Job, error)
	Update(ctx context.Context, id string, p models.JobPatch) error
	SetHubSpotDealID(ctx context.Context, id, dealID string) error
	GetHubSpotDealID(ctx context.Context, id string) (string, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	CountCompletedSince(ctx context.Context, since time.Time) (int, error)
	AverageCompletedAmount(ctx context.Context) (float64, error)
	CountCustomersWithCompleted(ctx context.Context, minJobs int) (int, error)
}

type AppointmentStore interface {
	Create(ctx context.Context, a models.Appointment) (models.Appointment, error)
	GetByID(ctx context.Context, id string) (models.Appointment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Appointment, error)
	LinkJob(ctx context.Context, id, jobID string) error
	SetHubSpotDealID(ctx context.Context, id, dealID string) error
}

type EstimateStore interface {
	Create(ctx context.Context, e models.Estimate) (models.Estimate, error)
	GetByID(ctx context.Context, id string) (models.Estimate, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Estimate, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetHubSpotDealID(ctx context.Context, id, dealID string) error
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p models.Payment) (models.Payment, error)
	GetByID(ctx context.Context, id string) (models.Payment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Payment, error)
	MarkByIntent(ctx context.Context, intentID, status string, paidAt *time.Time) error
	SumCompletedSince(ctx context.Context, since time.Time) (float64, error)
}

type InvoiceStore interface {
	MarkPaid(ctx context.Context, id string, at time.Time) error
}

type RecurringStore interface {
	Create(ctx context.Context, s models.RecurringService) (models.RecurringService, error)
	ListActiveByCustomer(ctx context.Context, customerID string) ([]models.RecurringService, error)
	ListActiveDueBy(ctx context.Context, date string) ([]models.RecurringService, error)
	ListActive(ctx context.Context) ([]models.RecurringService, error)
}

type ImageAssetStore interface {
	Upsert(ctx context.Context, a models.ImageAsset) error
	ListByJob(ctx context.Context, jobID string) ([]models.ImageAsset, error)
}

type AdminUserStore interface {
	GetByEmail(ctx context.Context, email string) (models.AdminUser, error)
}

// CRM is the HubSpot surface used by the sync paths.
type CRM interface {
	Configured() bool
	UpsertContact(ctx context.Context, c crm.Contact) (string, error)
	CreateDeal(ctx context.Context, d crm.Deal, contactID string) (string, error)
	UpdateDeal(ctx context.Context, dealID string, props map[string]string) error
}

type PaymentGateway interface {
	Configured() bool
	CreatePaymentIntent(ctx context.Context, req pay.PaymentIntentRequest) (pay.PaymentIntent, error)
}

type SMSSender interface {
	Configured() bool
	SendSMS(ctx context.Context, to, body string) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev models.Event) error
}

// publishEvent emits a domain event. Delivery problems are logged and never
// fail the request that produced the event.
func publishEvent(ctx context.Context, pub EventPublisher, log *zap.Logger, topic string, data any) {
	if pub == nil {
		return
	}
	ev, err := queue.NewEvent(ctx, topic, data)
	if err == nil {
		err = pub.Publish(ctx, ev)
	}
	if err != nil && log != nil {
		log.Warn("event publish failed", zap.String("topic", topic), zap.Error(err))
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nopIfNil(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
