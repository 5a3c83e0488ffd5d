package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"ospreyBack/internal/models"
)

type LeadRepository struct {
	DB      *sql.DB
	Dialect Dialect
	Table   string
}

// NewLeadRepository binds the repository to a configurable table name, which
// must be a plain (optionally schema-qualified) identifier.
func NewLeadRepository(db *sql.DB, d Dialect, table string) (*LeadRepository, error) {
	if table == "" {
		table = "leads"
	}
	if !validIdentifier(table) {
		return nil, models.ErrInvalidTableIdentifier
	}
	return &LeadRepository{DB: db, Dialect: d, Table: table}, nil
}

// ExistsByContact reports whether a lead matches every non-empty contact field.
func (r *LeadRepository) ExistsByContact(ctx context.Context, email, phone string) (bool, error) {
	var (
		conds []string
		args  []any
	)
	if email != "" {
		conds = append(conds, "email = ?")
		args = append(args, email)
	}
	if phone != "" {
		conds = append(conds, "phone = ?")
		args = append(args, phone)
	}
	if len(conds) == 0 {
		return false, nil
	}

	query := `SELECT id FROM ` + r.Table + ` WHERE ` + strings.Join(conds, " AND ") + ` LIMIT 1`
	var id string
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *LeadRepository) Insert(ctx context.Context, rec models.LeadRecord) error {
	var extra any
	if len(rec.Extra) > 0 {
		b, err := json.Marshal(rec.Extra)
		if err != nil {
			return err
		}
		extra = string(b)
	}
	query := `INSERT INTO ` + r.Table + ` (id, full_name, email, phone, address, city, zip, service_type, message,
		utm_source, utm_medium, utm_campaign, geo, notification_email, extra, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query),
		rec.ID, rec.Name, rec.Email, rec.Phone, rec.Address, rec.City, rec.Zip, rec.ServiceType, rec.Message,
		rec.UTMSource, rec.UTMMedium, rec.UTMCampaign, rec.Geo, rec.NotificationEmail, extra, rec.CreatedAt.UTC())
	return err
}

func (r *LeadRepository) GetByID(ctx context.Context, id string) (models.Lead, error) {
	query := `SELECT id, full_name, email, phone, city, zip, service_type, utm_source,
		hubspot_contact_id, hubspot_deal_id, created_at, updated_at
		FROM ` + r.Table + ` WHERE id = ?`
	var l models.Lead
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), id).Scan(
		&l.ID, &l.FullName, &l.Email, &l.Phone, &l.City, &l.Zip, &l.ServiceType, &l.UTMSource,
		&l.HubSpotContactID, &l.HubSpotDealID, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Lead{}, models.ErrNoRecord
	}
	return l, err
}

func (r *LeadRepository) SetHubSpotContactID(ctx context.Context, id, contactID string) error {
	query := `UPDATE ` + r.Table + ` SET hubspot_contact_id = ?, updated_at = ? WHERE id = ?`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), contactID, time.Now().UTC(), id)
	return err
}

func (r *LeadRepository) SetHubSpotDealID(ctx context.Context, id, dealID string) error {
	query := `UPDATE ` + r.Table + ` SET hubspot_deal_id = ?, updated_at = ? WHERE id = ?`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), dealID, time.Now().UTC(), id)
	return err
}

// CountPendingSync counts leads not yet pushed to HubSpot.
func (r *LeadRepository) CountPendingSync(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+r.Table+` WHERE hubspot_contact_id IS NULL`).Scan(&n)
	return n, err
}
