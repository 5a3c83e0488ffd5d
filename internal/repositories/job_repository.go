package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"ospreyBack/internal/models"
)

type JobRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewJobRepository(db *sql.DB, d Dialect) *JobRepository {
	return &JobRepository{DB: db, Dialect: d}
}

const jobColumns = `j.id, j.customer_id, j.service_type, j.status, j.scheduled_date, j.completed_date,
	j.total_amount, j.estimate_id, j.hubspot_deal_id, j.notes, j.crew, j.created_at, j.updated_at`

func (r *JobRepository) Create(ctx context.Context, j models.Job) (models.Job, error) {
	query := `INSERT INTO jobs (id, customer_id, service_type, status, scheduled_date, total_amount,
		estimate_id, hubspot_deal_id, notes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query),
		j.ID, j.CustomerID, j.ServiceType, j.Status, utcPtr(j.ScheduledDate), j.TotalAmount,
		j.EstimateID, j.HubSpotDealID, j.Notes, j.CreatedAt.UTC())
	if err != nil {
		return models.Job{}, err
	}
	return j, nil
}

// GetByID returns the job with its customer embedded.
func (r *JobRepository) GetByID(ctx context.Context, id string) (models.Job, error) {
	query := `SELECT ` + jobColumns + `, ` + prefixed("c", customerColumns) + `
		FROM jobs j JOIN customers c ON c.id = j.customer_id WHERE j.id = ?`
	row := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), id)

	var (
		j    models.Job
		cust models.Customer
		addr sql.NullString
	)
	dest := append(jobDest(&j),
		&cust.ID, &cust.FullName, &cust.Email, &cust.Phone, &addr, &cust.HubSpotContactID, &cust.CreatedAt, &cust.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Job{}, models.ErrNoRecord
		}
		return models.Job{}, err
	}
	if addr.Valid && addr.String != "" {
		cust.Address = []byte(addr.String)
	}
	j.Customer = &cust
	return j, nil
}

func (r *JobRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.customer_id = ? ORDER BY j.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(jobDest(&j)...); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Update writes the non-nil fields of the patch. Only whitelisted columns can
// be changed.
func (r *JobRepository) Update(ctx context.Context, id string, p models.JobPatch) error {
	if p.Empty() {
		return models.ErrEmptyPatch
	}
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.ScheduledDate != nil {
		add("scheduled_date", p.ScheduledDate.UTC())
	}
	if p.CompletedDate != nil {
		add("completed_date", p.CompletedDate.UTC())
	}
	if p.TotalAmount != nil {
		add("total_amount", *p.TotalAmount)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}
	if p.Crew != nil {
		add("crew", *p.Crew)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := `UPDATE jobs SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *JobRepository) SetHubSpotDealID(ctx context.Context, id, dealID string) error {
	query := `UPDATE jobs SET hubspot_deal_id = ?, updated_at = ? WHERE id = ?`
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), dealID, time.Now().UTC(), id)
	return err
}

func (r *JobRepository) GetHubSpotDealID(ctx context.Context, id string) (string, error) {
	var deal sql.NullString
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT hubspot_deal_id FROM jobs WHERE id = ?`), id).Scan(&deal)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrNoRecord
	}
	return deal.String, err
}

func (r *JobRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT COUNT(*) FROM jobs WHERE status = ?`), status).Scan(&n)
	return n, err
}

func (r *JobRepository) CountCompletedSince(ctx context.Context, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM jobs WHERE status = ? AND completed_date >= ?`
	var n int
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), models.StatusCompleted, since.UTC()).Scan(&n)
	return n, err
}

func (r *JobRepository) AverageCompletedAmount(ctx context.Context) (float64, error) {
	query := `SELECT AVG(total_amount) FROM jobs WHERE status = ? AND total_amount IS NOT NULL`
	var avg sql.NullFloat64
	if err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), models.StatusCompleted).Scan(&avg); err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

// CountCustomersWithCompleted counts customers having at least minJobs completed jobs.
func (r *JobRepository) CountCustomersWithCompleted(ctx context.Context, minJobs int) (int, error) {
	query := `SELECT COUNT(*) FROM (
		SELECT customer_id FROM jobs WHERE status = ? GROUP BY customer_id HAVING COUNT(*) >= ?
	) repeat_customers`
	var n int
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), models.StatusCompleted, minJobs).Scan(&n)
	return n, err
}

func jobDest(j *models.Job) []any {
	return []any{&j.ID, &j.CustomerID, &j.ServiceType, &j.Status, &j.ScheduledDate, &j.CompletedDate,
		&j.TotalAmount, &j.EstimateID, &j.HubSpotDealID, &j.Notes, &j.Crew, &j.CreatedAt, &j.UpdatedAt}
}

func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
