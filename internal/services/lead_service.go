package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ospreyBack/internal/models"
	"ospreyBack/internal/reqctx"
)

const (
	leadInsertAttempts = 3
	leadBaseDelay      = 150 * time.Millisecond
)

var emailPattern = regexp.MustCompile(`(?i)^[a-z0-9_'+\-.]*[a-z0-9_+\-]@([a-z0-9][a-z0-9\-]*\.)+[a-z]{2,}$`)

type LeadService struct {
	LeadRepo LeadStore
	Events   EventPublisher
	Log      *zap.Logger

	// Sleep and Jitter are swapped in tests.
	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func() time.Duration
	Now    func() time.Time
}

// leadFields maps the known JSON keys onto the payload.
var leadFields = map[string]func(p *models.LeadPayload) *string{
	"name":               func(p *models.LeadPayload) *string { return &p.Name },
	"email":              func(p *models.LeadPayload) *string { return &p.Email },
	"phone":              func(p *models.LeadPayload) *string { return &p.Phone },
	"address":            func(p *models.LeadPayload) *string { return &p.Address },
	"city":               func(p *models.LeadPayload) *string { return &p.City },
	"zip":                func(p *models.LeadPayload) *string { return &p.Zip },
	"service_type":       func(p *models.LeadPayload) *string { return &p.ServiceType },
	"service":            func(p *models.LeadPayload) *string { return &p.Service },
	"message":            func(p *models.LeadPayload) *string { return &p.Message },
	"utm_source":         func(p *models.LeadPayload) *string { return &p.UTMSource },
	"utm_medium":         func(p *models.LeadPayload) *string { return &p.UTMMedium },
	"utm_campaign":       func(p *models.LeadPayload) *string { return &p.UTMCampaign },
	"geo":                func(p *models.LeadPayload) *string { return &p.Geo },
	"notification_email": func(p *models.LeadPayload) *string { return &p.NotificationEmail },
}

// ParseLeadPayload splits a decoded JSON object into the known lead fields and
// passthrough extras. Known fields must be strings; null counts as absent.
func ParseLeadPayload(raw map[string]any) (models.LeadPayload, error) {
	var p models.LeadPayload
	for key, value := range raw {
		field, known := leadFields[key]
		if !known {
			if p.Extra == nil {
				p.Extra = make(map[string]any)
			}
			p.Extra[key] = value
			continue
		}
		if value == nil {
			continue
		}
		s, ok := value.(string)
		if !ok {
			return models.LeadPayload{}, models.NewValidationError(key, "Expected string")
		}
		*field(&p) = strings.TrimSpace(s)
	}
	return p, nil
}

func ValidateLead(p models.LeadPayload) error {
	if p.Name == "" {
		return models.NewValidationError("name", "Name is required")
	}
	if p.Email != "" && !validEmail(p.Email) {
		return models.NewValidationError("email", "Valid email required")
	}
	if p.Phone != "" {
		if n := utf8.RuneCountInString(p.Phone); n < 7 || n > 32 {
			return models.NewValidationError("phone", "Phone must be between 7 and 32 characters")
		}
	}
	limits := []struct {
		field string
		value string
		max   int
	}{
		{"address", p.Address, 240},
		{"city", p.City, 120},
		{"zip", p.Zip, 16},
		{"service_type", p.ServiceType, 120},
		{"service", p.Service, 120},
		{"message", p.Message, 2000},
		{"utm_source", p.UTMSource, 120},
		{"utm_medium", p.UTMMedium, 120},
		{"utm_campaign", p.UTMCampaign, 120},
		{"geo", p.Geo, 120},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			return models.NewValidationError(l.field, fmt.Sprintf("%s must be at most %d characters", l.field, l.max))
		}
	}
	if p.NotificationEmail != "" && !validEmail(p.NotificationEmail) {
		return models.NewValidationError("notification_email", "Invalid email")
	}
	if p.Email == "" && p.Phone == "" {
		return models.NewValidationError("email", "Email or phone is required")
	}
	return nil
}

func validEmail(s string) bool {
	if strings.HasPrefix(s, ".") || strings.Contains(s, "..") {
		return false
	}
	return emailPattern.MatchString(s)
}

// NormalizeLead builds the stored row. Extras never override base columns.
func NormalizeLead(p models.LeadPayload, id string, now time.Time) models.LeadRecord {
	serviceType := p.ServiceType
	if serviceType == "" {
		serviceType = p.Service
	}
	if serviceType == "" {
		serviceType = "general"
	}
	rec := models.LeadRecord{
		ID:                id,
		Name:              p.Name,
		Email:             nilIfEmpty(p.Email),
		Phone:             nilIfEmpty(p.Phone),
		Address:           nilIfEmpty(p.Address),
		City:              nilIfEmpty(p.City),
		Zip:               nilIfEmpty(p.Zip),
		ServiceType:       serviceType,
		Message:           nilIfEmpty(p.Message),
		UTMSource:         nilIfEmpty(p.UTMSource),
		UTMMedium:         nilIfEmpty(p.UTMMedium),
		UTMCampaign:       nilIfEmpty(p.UTMCampaign),
		Geo:               nilIfEmpty(p.Geo),
		NotificationEmail: nilIfEmpty(p.NotificationEmail),
		CreatedAt:         now.UTC(),
	}
	for k, v := range p.Extra {
		if _, base := leadFields[k]; base || k == "id" || k == "created_at" {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]any, len(p.Extra))
		}
		rec.Extra[k] = v
	}
	return rec
}

// Submit validates, de-duplicates and stores a lead.
func (s *LeadService) Submit(ctx context.Context, p models.LeadPayload) (models.LeadStatus, error) {
	if err := ValidateLead(p); err != nil {
		return "", err
	}
	log := reqctx.Logger(ctx, nopIfNil(s.Log))

	duplicate, err := s.LeadRepo.ExistsByContact(ctx, p.Email, p.Phone)
	if err != nil {
		log.Warn("lead_duplicate_check_failed", zap.Error(err))
		duplicate = false
	}
	if duplicate {
		log.Info("lead_duplicate_skipped",
			zap.String("email", p.Email),
			zap.String("phone", p.Phone),
			zap.String("remediation", "Lead already exists for contact info; skipping insert."))
		return models.LeadSkipped, nil
	}

	rec := NormalizeLead(p, uuid.NewString(), s.now())
	var lastErr error
	for attempt := 0; attempt < leadInsertAttempts; attempt++ {
		lastErr = s.LeadRepo.Insert(ctx, rec)
		if lastErr == nil {
			log.Info("lead_created",
				zap.String("email", p.Email),
				zap.String("phone", p.Phone),
				zap.String("serviceType", rec.ServiceType),
				zap.Int("cost_usd", 0))
			publishEvent(ctx, s.Events, log, models.TopicLeadCreated, models.LeadCreatedData{
				LeadID:      rec.ID,
				Name:        rec.Name,
				Email:       p.Email,
				Phone:       p.Phone,
				City:        p.City,
				Zip:         p.Zip,
				UTMSource:   p.UTMSource,
				ServiceType: rec.ServiceType,
			})
			return models.LeadCreated, nil
		}
		log.Warn("lead_insert_retry",
			zap.Int("attempt", attempt+1),
			zap.String("remediation", "Retrying Supabase insert with jitter"),
			zap.Error(lastErr))
		if attempt == leadInsertAttempts-1 {
			break
		}
		if err := s.sleep(ctx, leadBaseDelay*time.Duration(attempt+1)+s.jitter()); err != nil {
			lastErr = err
			break
		}
	}

	log.Error("lead_insert_failed",
		zap.String("remediation", "Verify Supabase credentials and table schema."),
		zap.Error(lastErr))
	return "", lastErr
}

func (s *LeadService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *LeadService) jitter() time.Duration {
	if s.Jitter != nil {
		return s.Jitter()
	}
	return rand.N(leadBaseDelay)
}

func (s *LeadService) sleep(ctx context.Context, d time.Duration) error {
	if s.Sleep != nil {
		return s.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
