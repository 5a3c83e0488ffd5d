package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"ospreyBack/internal/models"
)

const dueSoonWindow = 7 * 24 * time.Hour

type RecurringServiceService struct {
	RecurringRepo RecurringStore
	Now           func() time.Time
}

type RecurringServiceRequest struct {
	CustomerID      string `json:"customer_id"`
	ServiceType     string `json:"service_type"`
	Frequency       string `json:"frequency"`
	NextServiceDate string `json:"next_service_date"`
	Active          *bool  `json:"active,omitempty"`
}

func (s *RecurringServiceService) Create(ctx context.Context, req RecurringServiceRequest) (models.RecurringService, error) {
	if req.CustomerID == "" || req.ServiceType == "" || req.Frequency == "" || req.NextServiceDate == "" {
		return models.RecurringService{}, models.NewValidationError("", "Missing required fields")
	}
	frequency := strings.ToLower(strings.TrimSpace(req.Frequency))
	if !slices.Contains(models.RecurringFrequencies, frequency) {
		return models.RecurringService{}, models.NewValidationError("frequency", "Invalid frequency")
	}
	if _, err := time.Parse("2006-01-02", req.NextServiceDate); err != nil {
		return models.RecurringService{}, models.NewValidationError("next_service_date", "Invalid next service date")
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return s.RecurringRepo.Create(ctx, models.RecurringService{
		ID:              uuid.NewString(),
		CustomerID:      req.CustomerID,
		ServiceType:     req.ServiceType,
		Frequency:       frequency,
		NextServiceDate: req.NextServiceDate,
		Active:          active,
		CreatedAt:       s.now(),
	})
}

func (s *RecurringServiceService) ListByCustomer(ctx context.Context, customerID string) ([]models.RecurringService, error) {
	return s.RecurringRepo.ListActiveByCustomer(ctx, customerID)
}

// ListDueSoon returns active services due within the next week.
func (s *RecurringServiceService) ListDueSoon(ctx context.Context) ([]models.RecurringService, error) {
	cutoff := s.now().Add(dueSoonWindow).Format("2006-01-02")
	return s.RecurringRepo.ListActiveDueBy(ctx, cutoff)
}

func (s *RecurringServiceService) ListActive(ctx context.Context) ([]models.RecurringService, error) {
	return s.RecurringRepo.ListActive(ctx)
}

func (s *RecurringServiceService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
