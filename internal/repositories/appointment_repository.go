package repositories

import (
	"context"
	"database/sql"
	"errors"

	"ospreyBack/internal/models"
)

type AppointmentRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewAppointmentRepository(db *sql.DB, d Dialect) *AppointmentRepository {
	return &AppointmentRepository{DB: db, Dialect: d}
}

const appointmentColumns = `a.id, a.customer_id, a.job_id, a.scheduled_time, a.address, a.status, a.notes,
	a.hubspot_deal_id, a.created_at`

func (r *AppointmentRepository) Create(ctx context.Context, a models.Appointment) (models.Appointment, error) {
	var address any
	if len(a.Address) > 0 {
		address = string(a.Address)
	}
	query := `INSERT INTO appointments (id, customer_id, job_id, scheduled_time, address, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query),
		a.ID, a.CustomerID, a.JobID, a.ScheduledTime.UTC(), address, a.Status, a.Notes, a.CreatedAt.UTC())
	if err != nil {
		return models.Appointment{}, err
	}
	return a, nil
}

// GetByID returns the appointment with its customer and, when linked, its job.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `, ` + prefixed("c", customerColumns) + `
		FROM appointments a JOIN customers c ON c.id = a.customer_id WHERE a.id = ?`

	var (
		a     models.Appointment
		cust  models.Customer
		aAddr sql.NullString
		cAddr sql.NullString
	)
	dest := append(appointmentDest(&a, &aAddr),
		&cust.ID, &cust.FullName, &cust.Email, &cust.Phone, &cAddr, &cust.HubSpotContactID, &cust.CreatedAt, &cust.UpdatedAt)
	if err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), id).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Appointment{}, models.ErrNoRecord
		}
		return models.Appointment{}, err
	}
	if aAddr.Valid && aAddr.String != "" {
		a.Address = []byte(aAddr.String)
	}
	if cAddr.Valid && cAddr.String != "" {
		cust.Address = []byte(cAddr.String)
	}
	a.Customer = &cust

	if a.JobID != nil {
		var j models.Job
		jq := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.id = ?`
		err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(jq), *a.JobID).Scan(jobDest(&j)...)
		switch {
		case err == nil:
			a.Job = &j
		case !errors.Is(err, sql.ErrNoRows):
			return models.Appointment{}, err
		}
	}
	return a, nil
}

func (r *AppointmentRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments a WHERE a.customer_id = ? ORDER BY a.scheduled_time ASC`
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Appointment{}
	for rows.Next() {
		var (
			a    models.Appointment
			addr sql.NullString
		)
		if err := rows.Scan(appointmentDest(&a, &addr)...); err != nil {
			return nil, err
		}
		if addr.Valid && addr.String != "" {
			a.Address = []byte(addr.String)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AppointmentRepository) LinkJob(ctx context.Context, id, jobID string) error {
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`UPDATE appointments SET job_id = ? WHERE id = ?`), jobID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *AppointmentRepository) SetHubSpotDealID(ctx context.Context, id, dealID string) error {
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`UPDATE appointments SET hubspot_deal_id = ? WHERE id = ?`), dealID, id)
	return err
}

func appointmentDest(a *models.Appointment, addr *sql.NullString) []any {
	return []any{&a.ID, &a.CustomerID, &a.JobID, &a.ScheduledTime, addr, &a.Status, &a.Notes, &a.HubSpotDealID, &a.CreatedAt}
}
