package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ospreyBack/internal/models"
)

func TestParseScheduledTime(t *testing.T) {
	cases := []struct {
		clock string
		want  string
	}{
		{"09:30", "2026-06-01T09:30:00Z"},
		{"14:05:10", "2026-06-01T14:05:10Z"},
		{"2:15 PM", "2026-06-01T14:15:00Z"},
		{"8:00AM", "2026-06-01T08:00:00Z"},
	}
	for _, tc := range cases {
		got, err := ParseScheduledTime("2026-06-01", tc.clock, nil)
		require.NoError(t, err, tc.clock)
		assert.Equal(t, tc.want, got.Format(time.RFC3339))
	}

	_, err := ParseScheduledTime("06/01/2026", "09:30", nil)
	assert.Error(t, err)
	_, err = ParseScheduledTime("2026-06-01", "noon", nil)
	assert.Error(t, err)
}

func validBooking() models.BookingRequest {
	return models.BookingRequest{
		ServiceType:   "gutter-cleaning",
		ScheduledDate: "2026-06-01",
		ScheduledTime: "10:00",
		FullName:      "Jane Doe",
		Email:         "jane@example.com",
		Phone:         "5550100",
		Address:       "12 Harbor Rd",
		Notes:         "Side gate",
	}
}

func TestBookCreatesCustomerAppointmentAndJob(t *testing.T) {
	customers := newFakeCustomers()
	appointments := newFakeAppointments()
	jobs := newFakeJobs()
	pub := &recordingPublisher{}
	svc := &BookingService{CustomerRepo: customers, AppointmentRepo: appointments, JobRepo: jobs, Events: pub}

	res, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)

	cust, err := customers.GetByID(context.Background(), res.CustomerID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"address":"12 Harbor Rd"}`, string(cust.Address))

	appt, err := appointments.GetByID(context.Background(), res.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, appt.Status)
	require.NotNil(t, appt.JobID)
	assert.Equal(t, res.JobID, *appt.JobID)
	assert.Equal(t, "Side gate", *appt.Notes)
	assert.Equal(t, time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC), appt.ScheduledTime)

	job, err := jobs.GetByID(context.Background(), res.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, job.Status)
	assert.Equal(t, "gutter-cleaning", job.ServiceType)

	assert.Equal(t, []string{models.TopicBookingCreated}, pub.topics())
}

func TestBookReusesCustomerByEmail(t *testing.T) {
	email := "jane@example.com"
	customers := newFakeCustomers(models.Customer{ID: "cust-1", FullName: "Jane", Email: &email})
	svc := &BookingService{CustomerRepo: customers, AppointmentRepo: newFakeAppointments(), JobRepo: newFakeJobs()}

	res, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)
	assert.Equal(t, "cust-1", res.CustomerID)
	n, _ := customers.Count(context.Background())
	assert.Equal(t, 1, n)
}

func TestBookRejectsMissingFields(t *testing.T) {
	svc := &BookingService{CustomerRepo: newFakeCustomers(), AppointmentRepo: newFakeAppointments(), JobRepo: newFakeJobs()}
	req := validBooking()
	req.Phone = ""
	_, err := svc.Book(context.Background(), req)
	assert.EqualError(t, err, "Missing required fields")
}

func TestBookStopsOnLinkFailure(t *testing.T) {
	appointments := newFakeAppointments()
	appointments.linkErr = errors.New("db down")
	pub := &recordingPublisher{}
	svc := &BookingService{CustomerRepo: newFakeCustomers(), AppointmentRepo: appointments, JobRepo: newFakeJobs(), Events: pub}

	_, err := svc.Book(context.Background(), validBooking())
	assert.EqualError(t, err, "db down")
	assert.Empty(t, pub.topics())
}

func TestAvailableSlots(t *testing.T) {
	svc := &BookingService{}
	slots, err := svc.AvailableSlots("2026-06-01")
	require.NoError(t, err)
	require.Len(t, slots, 10)
	assert.Equal(t, "8:00 AM", slots[0])
	assert.Equal(t, "5:00 PM", slots[9])

	_, err = svc.AvailableSlots("")
	assert.EqualError(t, err, "date: Date parameter required")
}
