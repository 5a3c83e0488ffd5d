package services

import (
	"context"
	"errors"

	"ospreyBack/internal/models"
)

type JobService struct {
	JobRepo JobStore
}

func (s *JobService) GetJob(ctx context.Context, id string) (models.Job, error) {
	j, err := s.JobRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Job{}, models.ErrJobNotFound
	}
	return j, err
}

func (s *JobService) ListCustomerJobs(ctx context.Context, customerID string) ([]models.Job, error) {
	return s.JobRepo.ListByCustomer(ctx, customerID)
}

// UpdateJob applies a patch and returns the job as stored afterwards.
func (s *JobService) UpdateJob(ctx context.Context, id string, p models.JobPatch) (models.Job, error) {
	if p.Empty() {
		return models.Job{}, models.ErrEmptyPatch
	}
	if p.Status != nil && !models.ValidWorkStatus(*p.Status) {
		return models.Job{}, models.ErrInvalidStatus
	}
	if p.TotalAmount != nil && *p.TotalAmount < 0 {
		return models.Job{}, models.NewValidationError("total_amount", "Total amount must not be negative")
	}
	err := s.JobRepo.Update(ctx, id, p)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Job{}, models.ErrJobNotFound
	}
	if err != nil {
		return models.Job{}, err
	}
	return s.GetJob(ctx, id)
}
