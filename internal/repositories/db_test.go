package repositories

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE customers (id TEXT PRIMARY KEY, full_name TEXT NOT NULL, email TEXT, phone TEXT, address TEXT,
	hubspot_contact_id TEXT, created_at TIMESTAMP NOT NULL, updated_at TIMESTAMP);
CREATE TABLE leads (id TEXT PRIMARY KEY, full_name TEXT NOT NULL, email TEXT, phone TEXT, address TEXT, city TEXT,
	zip TEXT, service_type TEXT, message TEXT, utm_source TEXT, utm_medium TEXT, utm_campaign TEXT, geo TEXT,
	notification_email TEXT, extra TEXT, hubspot_contact_id TEXT, hubspot_deal_id TEXT,
	created_at TIMESTAMP NOT NULL, updated_at TIMESTAMP);
CREATE TABLE jobs (id TEXT PRIMARY KEY, customer_id TEXT NOT NULL REFERENCES customers(id), service_type TEXT NOT NULL,
	status TEXT NOT NULL, scheduled_date TIMESTAMP, completed_date TIMESTAMP, total_amount REAL, estimate_id TEXT,
	hubspot_deal_id TEXT, notes TEXT, crew TEXT, created_at TIMESTAMP NOT NULL, updated_at TIMESTAMP);
CREATE TABLE appointments (id TEXT PRIMARY KEY, customer_id TEXT NOT NULL REFERENCES customers(id), job_id TEXT,
	scheduled_time TIMESTAMP NOT NULL, address TEXT, status TEXT NOT NULL, notes TEXT, hubspot_deal_id TEXT,
	created_at TIMESTAMP NOT NULL);
CREATE TABLE estimates (id TEXT PRIMARY KEY, customer_id TEXT NOT NULL REFERENCES customers(id), service_type TEXT NOT NULL,
	amount REAL NOT NULL, status TEXT NOT NULL, expires_at TIMESTAMP NOT NULL, notes TEXT, pdf_url TEXT,
	hubspot_deal_id TEXT, created_at TIMESTAMP NOT NULL, updated_at TIMESTAMP);
CREATE TABLE invoices (id TEXT PRIMARY KEY, customer_id TEXT NOT NULL, job_id TEXT, amount REAL NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending', paid_at TIMESTAMP);
CREATE TABLE payments (id TEXT PRIMARY KEY, customer_id TEXT NOT NULL, job_id TEXT, invoice_id TEXT, amount REAL NOT NULL,
	stripe_payment_intent_id TEXT NOT NULL UNIQUE, status TEXT NOT NULL, paid_at TIMESTAMP, created_at TIMESTAMP NOT NULL);
CREATE TABLE recurring_services (id TEXT PRIMARY KEY, customer_id TEXT NOT NULL, service_type TEXT NOT NULL,
	frequency TEXT NOT NULL, next_service_date TEXT NOT NULL, active BOOLEAN NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL, updated_at TIMESTAMP);
CREATE TABLE image_assets (id TEXT PRIMARY KEY, job_id TEXT NOT NULL, filename TEXT NOT NULL, variant TEXT NOT NULL,
	type TEXT NOT NULL, url TEXT NOT NULL, bucket TEXT NOT NULL, created_at TIMESTAMP NOT NULL, UNIQUE (job_id, filename));
CREATE TABLE admin_users (id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'admin');
`

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(sqliteSchema)
	require.NoError(t, err)
	return db
}

func strPtr(s string) *string { return &s }
