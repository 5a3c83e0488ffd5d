package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"ospreyBack/internal/crm"
	"ospreyBack/internal/models"
	"ospreyBack/internal/queue"
	"ospreyBack/internal/reqctx"
)

const (
	SyncActionContact    = "sync_contact"
	SyncActionCreateDeal = "create_deal"
	SyncActionAll        = "sync_all"

	stageLead             = "lead"
	stageJobScheduled     = "job_scheduled"
	stageEstimateSent     = "estimate_sent"
	stageEstimateApproved = "estimate_approved"
)

// ErrContactSync wraps any failure to push a contact to HubSpot.
var ErrContactSync = errors.New("hubspot contact sync failed")

// CRMSyncService mirrors leads, bookings, estimates and payments into HubSpot.
type CRMSyncService struct {
	LeadRepo        LeadStore
	CustomerRepo    CustomerStore
	AppointmentRepo AppointmentStore
	EstimateRepo    EstimateStore
	JobRepo         JobStore
	CRM             CRM
	Log             *zap.Logger
}

func (s *CRMSyncService) Configured() bool {
	return s.CRM != nil && s.CRM.Configured()
}

// SyncLead pushes a stored lead to HubSpot as a contact and, for the deal
// actions, opens a deal for it. Returns the HubSpot contact id.
func (s *CRMSyncService) SyncLead(ctx context.Context, leadID, action string) (string, error) {
	if leadID == "" || action == "" {
		return "", models.NewValidationError("", "Missing leadId or action")
	}
	lead, err := s.LeadRepo.GetByID(ctx, leadID)
	if errors.Is(err, models.ErrNoRecord) {
		return "", models.ErrLeadNotFound
	}
	if err != nil {
		return "", err
	}
	log := reqctx.Logger(ctx, nopIfNil(s.Log)).With(zap.String("lead_id", leadID))

	if !s.Configured() {
		log.Error("hubspot api key not configured")
		return "", fmt.Errorf("%w: %w", ErrContactSync, models.ErrProviderNotConfigured)
	}

	first, last := crm.SplitName(lead.FullName)
	source := deref(lead.UTMSource)
	if source == "" {
		source = "website"
	}
	contactID, err := s.CRM.UpsertContact(ctx, crm.Contact{
		Email:       deref(lead.Email),
		FirstName:   first,
		LastName:    last,
		Phone:       deref(lead.Phone),
		ServiceType: deref(lead.ServiceType),
		ServiceArea: deref(lead.City),
		ZipCode:     deref(lead.Zip),
		LeadSource:  source,
	})
	if err == nil && contactID == "" {
		err = errors.New("empty contact id")
	}
	if err != nil {
		log.Error("hubspot contact sync failed", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrContactSync, err)
	}
	if err := s.LeadRepo.SetHubSpotContactID(ctx, leadID, contactID); err != nil {
		return "", err
	}

	if action != SyncActionCreateDeal && action != SyncActionAll {
		return contactID, nil
	}

	service := deref(lead.ServiceType)
	if service == "" {
		service = "Service"
	}
	city := deref(lead.City)
	if city == "" {
		city = "Unknown"
	}
	dealID, err := s.CRM.CreateDeal(ctx, crm.Deal{
		Name:        service + " - " + city,
		Stage:       stageLead,
		ServiceType: deref(lead.ServiceType),
		ServiceArea: deref(lead.City),
	}, contactID)
	if err != nil {
		log.Error("hubspot deal create failed", zap.Error(err))
		return contactID, nil
	}
	if err := s.LeadRepo.SetHubSpotDealID(ctx, leadID, dealID); err != nil {
		return "", err
	}
	return contactID, nil
}

// Subscribe registers the CRM consumers for every domain topic.
func (s *CRMSyncService) Subscribe(q queue.Queue) error {
	handlers := map[string]queue.Handler{
		models.TopicLeadCreated:      s.HandleLeadCreated,
		models.TopicBookingCreated:   s.HandleBookingCreated,
		models.TopicEstimateCreated:  s.HandleEstimateCreated,
		models.TopicEstimateApproved: s.HandleEstimateApproved,
		models.TopicPaymentCreated:   s.HandlePaymentCreated,
	}
	for topic, h := range handlers {
		if err := q.Subscribe(topic, s.skipUnconfigured(h)); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	return nil
}

func (s *CRMSyncService) skipUnconfigured(h queue.Handler) queue.Handler {
	return func(ctx context.Context, ev models.Event) error {
		if !s.Configured() {
			return nil
		}
		return h(ctx, ev)
	}
}

func (s *CRMSyncService) HandleLeadCreated(ctx context.Context, ev models.Event) error {
	var data models.LeadCreatedData
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return err
	}
	_, err := s.SyncLead(ctx, data.LeadID, SyncActionContact)
	if errors.Is(err, models.ErrLeadNotFound) {
		return nil
	}
	return err
}

// HandleBookingCreated upserts the customer contact and opens a scheduled job
// deal linked to the appointment and job. A deal already stored on the
// appointment is reused so redelivered events never open a second deal.
func (s *CRMSyncService) HandleBookingCreated(ctx context.Context, ev models.Event) error {
	var data models.BookingCreatedData
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return err
	}
	log := reqctx.Logger(ctx, nopIfNil(s.Log)).With(zap.String("appointment_id", data.AppointmentID))

	first, last := crm.SplitName(data.FullName)
	contactID, err := s.CRM.UpsertContact(ctx, crm.Contact{
		Email:       data.Email,
		FirstName:   first,
		LastName:    last,
		Phone:       data.Phone,
		ServiceType: data.ServiceType,
	})
	if err != nil {
		return err
	}
	if err := s.CustomerRepo.UpdateHubSpotContactID(ctx, data.CustomerID, contactID); err != nil && !errors.Is(err, models.ErrNoRecord) {
		return err
	}

	appt, err := s.AppointmentRepo.GetByID(ctx, data.AppointmentID)
	if err != nil && !errors.Is(err, models.ErrNoRecord) {
		return err
	}
	dealID := deref(appt.HubSpotDealID)
	if dealID == "" {
		dealID, err = s.CRM.CreateDeal(ctx, crm.Deal{
			Name:        data.ServiceType + " - " + data.ScheduledDate,
			Stage:       stageJobScheduled,
			ServiceType: data.ServiceType,
		}, contactID)
		if err != nil {
			return err
		}
		// The deal exists now; a retry from here would open another one.
		if err := s.AppointmentRepo.SetHubSpotDealID(ctx, data.AppointmentID, dealID); err != nil {
			log.Error("store appointment deal id", zap.String("deal_id", dealID), zap.Error(err))
		}
	}
	return s.JobRepo.SetHubSpotDealID(ctx, data.JobID, dealID)
}

// HandleEstimateCreated opens an estimate deal for customers already known to
// HubSpot.
func (s *CRMSyncService) HandleEstimateCreated(ctx context.Context, ev models.Event) error {
	var data models.EstimateCreatedData
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return err
	}
	customer, err := s.CustomerRepo.GetByID(ctx, data.CustomerID)
	if errors.Is(err, models.ErrNoRecord) {
		return nil
	}
	if err != nil {
		return err
	}
	if customer.HubSpotContactID == nil || *customer.HubSpotContactID == "" {
		return nil
	}
	dealID, err := s.CRM.CreateDeal(ctx, crm.Deal{
		Name:        "Estimate - " + data.ServiceType,
		Stage:       stageEstimateSent,
		Amount:      formatAmount(data.Amount),
		ServiceType: data.ServiceType,
	}, *customer.HubSpotContactID)
	if err != nil {
		return err
	}
	return s.EstimateRepo.SetHubSpotDealID(ctx, data.EstimateID, dealID)
}

func (s *CRMSyncService) HandleEstimateApproved(ctx context.Context, ev models.Event) error {
	var data models.EstimateApprovedData
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return err
	}
	if data.HubSpotDealID == "" {
		return nil
	}
	return s.CRM.UpdateDeal(ctx, data.HubSpotDealID, map[string]string{"dealstage": stageEstimateApproved})
}

// HandlePaymentCreated copies the payment amount onto the job's deal.
func (s *CRMSyncService) HandlePaymentCreated(ctx context.Context, ev models.Event) error {
	var data models.PaymentCreatedData
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return err
	}
	if data.JobID == "" {
		return nil
	}
	dealID, err := s.JobRepo.GetHubSpotDealID(ctx, data.JobID)
	if errors.Is(err, models.ErrNoRecord) || (err == nil && dealID == "") {
		return nil
	}
	if err != nil {
		return err
	}
	return s.CRM.UpdateDeal(ctx, dealID, map[string]string{"amount": formatAmount(data.Amount)})
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
