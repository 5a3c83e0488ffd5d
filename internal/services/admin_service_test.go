package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ospreyBack/internal/models"
	"ospreyBack/utils"
)

type fakeAdmins map[string]models.AdminUser

func (f fakeAdmins) GetByEmail(_ context.Context, email string) (models.AdminUser, error) {
	u, ok := f[email]
	if !ok {
		return models.AdminUser{}, models.ErrNoRecord
	}
	return u, nil
}

func TestAdminLogin(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	tm, err := utils.NewManager("signing-key", time.Hour)
	require.NoError(t, err)

	svc := &AdminService{
		AdminRepo:    fakeAdmins{"ops@example.com": {ID: "adm-1", Email: "ops@example.com", PasswordHash: hash, Role: "admin"}},
		TokenManager: tm,
	}

	res, err := svc.Login(context.Background(), "ops@example.com", "s3cret!")
	require.NoError(t, err)
	claims, err := tm.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "adm-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	_, err = svc.Login(context.Background(), "ops@example.com", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "nobody@example.com", "s3cret!")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "", "")
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAdminMetrics(t *testing.T) {
	jobs := newFakeJobs()
	jobs.completed = 4
	jobs.average = 312.5
	jobs.repeat = 1
	jobs.byStatus[models.StatusScheduled] = 6

	svc := &AdminService{
		CustomerRepo: newFakeCustomers(models.Customer{ID: "a"}, models.Customer{ID: "b"}, models.Customer{ID: "c"}, models.Customer{ID: "d"}),
		LeadRepo:     &fakeLeads{pending: 3},
		JobRepo:      jobs,
		PaymentRepo:  &fakePayments{revenue: 1250},
		Now:          func() time.Time { return fixedNow },
	}

	m, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Metrics{
		TotalRevenue:          1250,
		TotalJobs:             4,
		AvgJobValue:           312.5,
		CustomerRetentionRate: 0.25,
		PendingLeads:          3,
		ScheduledJobs:         6,
	}, m)
	assert.Equal(t, 2, jobs.minJobsSeen)
}

func TestAdminMetricsNoCustomers(t *testing.T) {
	svc := &AdminService{
		CustomerRepo: newFakeCustomers(),
		LeadRepo:     &fakeLeads{},
		JobRepo:      newFakeJobs(),
		PaymentRepo:  &fakePayments{},
	}
	m, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, m.CustomerRetentionRate)
}

func TestAdminMetricsQueryFailure(t *testing.T) {
	boom := errors.New("connection reset")
	svc := &AdminService{
		CustomerRepo: newFakeCustomers(models.Customer{ID: "a"}),
		LeadRepo:     &fakeLeads{pending: 1},
		JobRepo:      newFakeJobs(),
		PaymentRepo:  &fakePayments{sumErr: boom},
	}
	m, err := svc.Metrics(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, models.Metrics{}, m)
}

func TestStartOfMonth(t *testing.T) {
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), startOfMonth(fixedNow))
}
