package services

import (
	"context"
	"errors"

	"ospreyBack/internal/models"
)

type AppointmentService struct {
	AppointmentRepo AppointmentStore
}

func (s *AppointmentService) GetAppointment(ctx context.Context, id string) (models.Appointment, error) {
	a, err := s.AppointmentRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Appointment{}, models.ErrAppointmentNotFound
	}
	return a, err
}

func (s *AppointmentService) ListCustomerAppointments(ctx context.Context, customerID string) ([]models.Appointment, error) {
	return s.AppointmentRepo.ListByCustomer(ctx, customerID)
}
