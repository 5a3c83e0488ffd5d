package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := `UPDATE jobs SET status = ?, notes = ? WHERE id = ?`
	assert.Equal(t, q, QuestionDialect.Rebind(q))
	assert.Equal(t, `UPDATE jobs SET status = $1, notes = $2 WHERE id = $3`, DollarDialect.Rebind(q))
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, DollarDialect, DialectFor("pgx"))
	assert.Equal(t, DollarDialect, DialectFor("postgres"))
	assert.Equal(t, QuestionDialect, DialectFor("mysql"))
	assert.Equal(t, QuestionDialect, DialectFor("sqlite"))
}

func TestValidIdentifier(t *testing.T) {
	assert.True(t, validIdentifier("leads"))
	assert.True(t, validIdentifier("public.web_leads"))
	assert.False(t, validIdentifier("leads; DROP TABLE leads"))
	assert.False(t, validIdentifier("1leads"))
	assert.False(t, validIdentifier(""))
}

func TestDateOnly(t *testing.T) {
	assert.Equal(t, "2026-03-01", dateOnly("2026-03-01T00:00:00Z"))
	assert.Equal(t, "2026-03-01", dateOnly("2026-03-01"))
}

func TestOpenSQLite(t *testing.T) {
	assert.Equal(t, "pgx", DriverName("postgres"))
	assert.Equal(t, "mysql", DriverName("mysql"))

	db, err := Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	assert.NoError(t, db.Ping())
}
