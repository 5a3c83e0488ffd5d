package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ospreyBack/internal/models"
	"ospreyBack/internal/reqctx"
)

var availableSlots = []string{
	"8:00 AM", "9:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"1:00 PM", "2:00 PM", "3:00 PM", "4:00 PM", "5:00 PM",
}

var bookingTimeLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3:04 pm", "3:04pm"}

type BookingService struct {
	CustomerRepo    CustomerStore
	AppointmentRepo AppointmentStore
	JobRepo         JobStore
	Events          EventPublisher
	Log             *zap.Logger
	// Location interprets the requested wall-clock time. Defaults to UTC.
	Location *time.Location
	Now      func() time.Time
}

// ParseScheduledTime combines a YYYY-MM-DD date with a clock time.
func ParseScheduledTime(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, models.NewValidationError("scheduled_date", "Invalid scheduled date")
	}
	clock = strings.TrimSpace(clock)
	for _, layout := range bookingTimeLayouts {
		t, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	return time.Time{}, models.NewValidationError("scheduled_time", "Invalid scheduled time")
}

func validateBooking(req models.BookingRequest) error {
	required := []string{req.ServiceType, req.ScheduledDate, req.ScheduledTime, req.FullName, req.Email, req.Phone, req.Address}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return models.NewValidationError("", "Missing required fields")
		}
	}
	return nil
}

// Book records a booking: customer (found by email or created), appointment,
// job, then links the job back onto the appointment.
func (s *BookingService) Book(ctx context.Context, req models.BookingRequest) (models.BookingResult, error) {
	if err := validateBooking(req); err != nil {
		return models.BookingResult{}, err
	}
	scheduled, err := ParseScheduledTime(req.ScheduledDate, req.ScheduledTime, s.Location)
	if err != nil {
		return models.BookingResult{}, err
	}
	log := reqctx.Logger(ctx, nopIfNil(s.Log))
	now := s.now()

	address, err := json.Marshal(map[string]string{"address": req.Address})
	if err != nil {
		return models.BookingResult{}, err
	}

	customer, err := findOrCreateCustomer(ctx, s.CustomerRepo, models.Customer{
		ID:        uuid.NewString(),
		FullName:  req.FullName,
		Email:     nilIfEmpty(req.Email),
		Phone:     nilIfEmpty(req.Phone),
		Address:   address,
		CreatedAt: now,
	})
	if err != nil {
		return models.BookingResult{}, err
	}

	appointment, err := s.AppointmentRepo.Create(ctx, models.Appointment{
		ID:            uuid.NewString(),
		CustomerID:    customer.ID,
		ScheduledTime: scheduled,
		Address:       address,
		Status:        models.StatusScheduled,
		Notes:         nilIfEmpty(req.Notes),
		CreatedAt:     now,
	})
	if err != nil {
		return models.BookingResult{}, err
	}

	job, err := s.JobRepo.Create(ctx, models.Job{
		ID:            uuid.NewString(),
		CustomerID:    customer.ID,
		ServiceType:   req.ServiceType,
		Status:        models.StatusScheduled,
		ScheduledDate: &scheduled,
		CreatedAt:     now,
	})
	if err != nil {
		return models.BookingResult{}, err
	}

	if err := s.AppointmentRepo.LinkJob(ctx, appointment.ID, job.ID); err != nil {
		return models.BookingResult{}, err
	}

	log.Info("booking created",
		zap.String("customer_id", customer.ID),
		zap.String("appointment_id", appointment.ID),
		zap.String("job_id", job.ID))
	publishEvent(ctx, s.Events, log, models.TopicBookingCreated, models.BookingCreatedData{
		CustomerID:    customer.ID,
		AppointmentID: appointment.ID,
		JobID:         job.ID,
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		ServiceType:   req.ServiceType,
		ScheduledDate: req.ScheduledDate,
	})

	return models.BookingResult{
		AppointmentID: appointment.ID,
		JobID:         job.ID,
		CustomerID:    customer.ID,
	}, nil
}

// AvailableSlots returns the bookable times for a date.
func (s *BookingService) AvailableSlots(date string) ([]string, error) {
	if strings.TrimSpace(date) == "" {
		return nil, models.NewValidationError("date", "Date parameter required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, models.NewValidationError("date", "Invalid date")
	}
	slots := make([]string, len(availableSlots))
	copy(slots, availableSlots)
	return slots, nil
}

func (s *BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
