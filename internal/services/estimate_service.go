package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ospreyBack/internal/models"
	"ospreyBack/internal/reqctx"
)

const defaultEstimateExpiryDays = 30

type EstimateService struct {
	EstimateRepo EstimateStore
	CustomerRepo CustomerStore
	JobRepo      JobStore
	Events       EventPublisher
	Log          *zap.Logger
	Now          func() time.Time
}

func EstimatePDFPath(id string) string {
	return "/api/estimates/" + id + "/pdf"
}

func validateEstimate(req models.EstimateRequest) error {
	if strings.TrimSpace(req.ServiceType) == "" || len(req.LineItems) == 0 {
		return models.NewValidationError("", "Missing required fields")
	}
	for i, item := range req.LineItems {
		if item.Quantity <= 0 {
			return models.NewValidationError(fmt.Sprintf("line_items[%d].quantity", i), "Quantity must be greater than zero")
		}
		if item.UnitPrice < 0 {
			return models.NewValidationError(fmt.Sprintf("line_items[%d].unit_price", i), "Unit price must not be negative")
		}
	}
	if req.ExpiresDays != nil && *req.ExpiresDays <= 0 {
		return models.NewValidationError("expires_days", "Expiry must be at least one day")
	}
	return nil
}

func lineItemsTotal(items []models.LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Quantity * item.UnitPrice
	}
	return total
}

func (s *EstimateService) resolveCustomer(ctx context.Context, req models.EstimateRequest) (models.Customer, error) {
	switch {
	case req.CustomerID != "":
		c, err := s.CustomerRepo.GetByID(ctx, req.CustomerID)
		if errors.Is(err, models.ErrNoRecord) {
			return models.Customer{}, models.ErrCustomerNotFound
		}
		return c, err
	case req.CustomerEmail != "":
		return findOrCreateCustomer(ctx, s.CustomerRepo, models.Customer{
			ID:        uuid.NewString(),
			FullName:  req.CustomerName,
			Email:     nilIfEmpty(req.CustomerEmail),
			CreatedAt: s.now(),
		})
	default:
		return models.Customer{}, models.NewValidationError("customer_id", "Customer ID or email required")
	}
}

func (s *EstimateService) CreateEstimate(ctx context.Context, req models.EstimateRequest) (models.EstimateResult, error) {
	if err := validateEstimate(req); err != nil {
		return models.EstimateResult{}, err
	}
	customer, err := s.resolveCustomer(ctx, req)
	if err != nil {
		return models.EstimateResult{}, err
	}

	days := defaultEstimateExpiryDays
	if req.ExpiresDays != nil {
		days = *req.ExpiresDays
	}
	now := s.now()
	id := uuid.NewString()
	notes, err := json.Marshal(models.EstimateNotes{
		LineItems:     req.LineItems,
		OriginalNotes: nilIfEmpty(req.Notes),
	})
	if err != nil {
		return models.EstimateResult{}, err
	}
	notesStr := string(notes)
	pdfURL := EstimatePDFPath(id)

	est, err := s.EstimateRepo.Create(ctx, models.Estimate{
		ID:          id,
		CustomerID:  customer.ID,
		ServiceType: req.ServiceType,
		Amount:      lineItemsTotal(req.LineItems),
		Status:      models.EstimatePending,
		ExpiresAt:   now.AddDate(0, 0, days),
		Notes:       &notesStr,
		PDFURL:      &pdfURL,
		CreatedAt:   now,
	})
	if err != nil {
		return models.EstimateResult{}, err
	}

	log := reqctx.Logger(ctx, nopIfNil(s.Log))
	publishEvent(ctx, s.Events, log, models.TopicEstimateCreated, models.EstimateCreatedData{
		EstimateID:  est.ID,
		CustomerID:  customer.ID,
		Amount:      est.Amount,
		ServiceType: est.ServiceType,
	})

	return models.EstimateResult{
		EstimateID: est.ID,
		Amount:     est.Amount,
		PDFURL:     pdfURL,
		ExpiresAt:  est.ExpiresAt,
	}, nil
}

func (s *EstimateService) GetEstimate(ctx context.Context, id string) (models.Estimate, error) {
	e, err := s.EstimateRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Estimate{}, models.ErrEstimateNotFound
	}
	return e, err
}

func (s *EstimateService) ListCustomerEstimates(ctx context.Context, customerID string) ([]models.Estimate, error) {
	return s.EstimateRepo.ListByCustomer(ctx, customerID)
}

// UpdateStatus changes the estimate status. Approving an estimate tied to a
// HubSpot deal schedules a job for it.
func (s *EstimateService) UpdateStatus(ctx context.Context, id, status string) (models.Estimate, error) {
	if !models.ValidEstimateStatus(status) {
		return models.Estimate{}, models.ErrInvalidStatus
	}
	err := s.EstimateRepo.UpdateStatus(ctx, id, status)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Estimate{}, models.ErrEstimateNotFound
	}
	if err != nil {
		return models.Estimate{}, err
	}
	est, err := s.GetEstimate(ctx, id)
	if err != nil {
		return models.Estimate{}, err
	}

	if status != models.EstimateApproved || est.HubSpotDealID == nil || *est.HubSpotDealID == "" {
		return est, nil
	}

	amount := est.Amount
	estimateID := est.ID
	dealID := *est.HubSpotDealID
	job, err := s.JobRepo.Create(ctx, models.Job{
		ID:            uuid.NewString(),
		CustomerID:    est.CustomerID,
		ServiceType:   est.ServiceType,
		Status:        models.StatusScheduled,
		TotalAmount:   &amount,
		EstimateID:    &estimateID,
		HubSpotDealID: &dealID,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return models.Estimate{}, err
	}

	log := reqctx.Logger(ctx, nopIfNil(s.Log))
	log.Info("estimate approved", zap.String("estimate_id", est.ID), zap.String("job_id", job.ID))
	publishEvent(ctx, s.Events, log, models.TopicEstimateApproved, models.EstimateApprovedData{
		EstimateID:    est.ID,
		HubSpotDealID: dealID,
	})
	return est, nil
}

// RenderDocument renders the printable estimate served at the pdf_url.
func (s *EstimateService) RenderDocument(ctx context.Context, id string) ([]byte, error) {
	est, err := s.GetEstimate(ctx, id)
	if err != nil {
		return nil, err
	}
	var notes models.EstimateNotes
	if est.Notes != nil {
		if err := json.Unmarshal([]byte(*est.Notes), &notes); err != nil {
			notes.OriginalNotes = est.Notes
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "ESTIMATE %s\n", est.ID)
	if est.Customer != nil {
		fmt.Fprintf(&buf, "Customer: %s\n", est.Customer.FullName)
		if est.Customer.Email != nil {
			fmt.Fprintf(&buf, "Email: %s\n", *est.Customer.Email)
		}
	}
	fmt.Fprintf(&buf, "Service: %s\n", est.ServiceType)
	fmt.Fprintf(&buf, "Status: %s\n", est.Status)
	fmt.Fprintf(&buf, "Issued: %s\n", est.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&buf, "Valid until: %s\n\n", est.ExpiresAt.Format("2006-01-02"))

	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Description\tQty\tUnit price\tTotal\t")
	for _, item := range notes.LineItems {
		fmt.Fprintf(tw, "%s\t%g\t%.2f\t%.2f\t\n", item.Description, item.Quantity, item.UnitPrice, item.Quantity*item.UnitPrice)
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	fmt.Fprintf(&buf, "\nTotal: $%.2f\n", est.Amount)
	if notes.OriginalNotes != nil && *notes.OriginalNotes != "" {
		fmt.Fprintf(&buf, "\nNotes: %s\n", *notes.OriginalNotes)
	}
	return buf.Bytes(), nil
}

// ExpirePending marks pending estimates past their expiry as expired.
func (s *EstimateService) ExpirePending(ctx context.Context) (int64, error) {
	return s.EstimateRepo.ExpirePending(ctx, s.now())
}

func (s *EstimateService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
