package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"ospreyBack/internal/models"
	"ospreyBack/utils"
)

type AdminService struct {
	AdminRepo    AdminUserStore
	CustomerRepo CustomerStore
	LeadRepo     LeadStore
	JobRepo      JobStore
	PaymentRepo  PaymentStore
	TokenManager *utils.Manager
	Now          func() time.Time
}

type LoginResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      models.AdminUser `json:"user"`
}

// Login checks the admin credentials and issues a signed token.
func (s *AdminService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, models.NewValidationError("", "Email and password required")
	}
	user, err := s.AdminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return LoginResult{}, models.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, models.ErrInvalidCredentials
	}
	token, exp, err := s.TokenManager.NewJWT(user)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Metrics aggregates the dashboard numbers for the current month. The
// independent counts run concurrently.
func (s *AdminService) Metrics(ctx context.Context) (models.Metrics, error) {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	monthStart := startOfMonth(now)

	var (
		m                 models.Metrics
		customers, repeat int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m.TotalRevenue, err = s.PaymentRepo.SumCompletedSince(gctx, monthStart)
		return err
	})
	g.Go(func() (err error) {
		m.TotalJobs, err = s.JobRepo.CountCompletedSince(gctx, monthStart)
		return err
	})
	g.Go(func() (err error) {
		m.AvgJobValue, err = s.JobRepo.AverageCompletedAmount(gctx)
		return err
	})
	g.Go(func() (err error) {
		customers, err = s.CustomerRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		repeat, err = s.JobRepo.CountCustomersWithCompleted(gctx, 2)
		return err
	})
	g.Go(func() (err error) {
		m.PendingLeads, err = s.LeadRepo.CountPendingSync(gctx)
		return err
	})
	g.Go(func() (err error) {
		m.ScheduledJobs, err = s.JobRepo.CountByStatus(gctx, models.StatusScheduled)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Metrics{}, err
	}

	if customers > 0 {
		m.CustomerRetentionRate = float64(repeat) / float64(customers)
	}
	return m, nil
}
