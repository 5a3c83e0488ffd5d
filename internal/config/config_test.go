package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Server.Address)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "leads", cfg.Database.LeadsTable)
	assert.Equal(t, 10, cfg.RateLimit.Max)
	assert.Equal(t, 60, cfg.RateLimit.WindowSeconds)
	assert.Equal(t, 1.0, cfg.Pipeline.ClusterMiles)
	assert.Equal(t, 4.0, cfg.Pipeline.ClusterHours)
	require.Len(t, cfg.Pipeline.Variants, 3)
	assert.Equal(t, Variant{Name: "full", Width: 2400, Quality: 82}, cfg.Pipeline.Variants[0])
	assert.Contains(t, cfg.Pipeline.Cities, "mercer-island")
	assert.True(t, cfg.LeadSubmissionEnabled())
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
server:
  address: ":9000"
database:
  driver: mysql
  url: "user:pass@/osprey"
rate_limit:
  max: 3
features:
  lead_submission: "on"
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "8080")
	t.Setenv("FEATURE_LEAD_SUBMISSION", "OFF")
	t.Setenv("SUPABASE_LEADS_TABLE", "web_leads")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3, cfg.RateLimit.Max)
	assert.Equal(t, "web_leads", cfg.Database.LeadsTable)
	assert.False(t, cfg.LeadSubmissionEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadInteger(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("RATE_LIMIT_MAX", "ten")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse RATE_LIMIT_MAX")
}

func TestValidate(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)
	assert.EqualError(t, cfg.Validate(), "DATABASE_URL is required")

	cfg.Database.URL = "file::memory:"
	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = "sqlite"
	assert.NoError(t, cfg.Validate())
}
