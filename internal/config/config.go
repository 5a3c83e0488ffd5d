package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	defaultConfigPath     = "config/config.yaml"
	defaultAddress        = ":4000"
	defaultDriver         = "pgx"
	defaultLeadsTable     = "leads"
	defaultRateLimitMax   = 10
	defaultRateLimitSecs  = 60
	defaultTokenTTLHours  = 12
	defaultExpireMinutes  = 30
	defaultServiceName    = "osprey-back"
	defaultStorageBucket  = "public"
	defaultFCMTopic       = "staff"
	defaultGeocoderURL    = "https://nominatim.openstreetmap.org"
	defaultGeocoderAgent  = "ospreyBack-imagepipeline/1.0"
	defaultWatchDebounceM = 1500
)

type Config struct {
	LogLevel string `yaml:"log_level"`
	Server   struct {
		Address        string   `yaml:"address"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Database struct {
		Driver     string `yaml:"driver"`
		URL        string `yaml:"url"`
		LeadsTable string `yaml:"leads_table"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	RateLimit struct {
		Max           int `yaml:"max"`
		WindowSeconds int `yaml:"window_seconds"`
	} `yaml:"rate_limit"`
	Features struct {
		LeadSubmission string `yaml:"lead_submission"`
	} `yaml:"features"`
	Stripe struct {
		SecretKey     string `yaml:"secret_key"`
		WebhookSecret string `yaml:"webhook_secret"`
		BaseURL       string `yaml:"base_url"`
	} `yaml:"stripe"`
	HubSpot struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"hubspot"`
	Twilio struct {
		AccountSID  string `yaml:"account_sid"`
		AuthToken   string `yaml:"auth_token"`
		PhoneNumber string `yaml:"phone_number"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"twilio"`
	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTLHours int    `yaml:"token_ttl_hours"`
	} `yaml:"auth"`
	AMQP struct {
		URL string `yaml:"url"`
	} `yaml:"amqp"`
	FCM struct {
		CredentialsFile string `yaml:"credentials_file"`
		Topic           string `yaml:"topic"`
	} `yaml:"fcm"`
	Storage   StorageConfig `yaml:"storage"`
	Telemetry struct {
		ServiceName  string `yaml:"service_name"`
		OTLPEndpoint string `yaml:"otlp_endpoint"`
	} `yaml:"telemetry"`
	Estimates struct {
		ExpireIntervalMinutes int `yaml:"expire_interval_minutes"`
	} `yaml:"estimates"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PublicURL string `yaml:"public_url"`
}

// Configured reports whether uploads can be made.
func (s StorageConfig) Configured() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

type Variant struct {
	Name    string `yaml:"name"`
	Width   int    `yaml:"width"`
	Quality int    `yaml:"quality"`
}

type PipelineConfig struct {
	IncomingDir       string            `yaml:"incoming_dir"`
	ProcessedDir      string            `yaml:"processed_dir"`
	JobsDir           string            `yaml:"jobs_dir"`
	ClusterMiles      float64           `yaml:"cluster_miles"`
	ClusterHours      float64           `yaml:"cluster_hours"`
	Variants          []Variant         `yaml:"variants"`
	AllowedExtensions []string          `yaml:"allowed_extensions"`
	BeforeKeywords    []string          `yaml:"before_keywords"`
	AfterKeywords     []string          `yaml:"after_keywords"`
	ServiceKeywords   map[string]string `yaml:"service_keywords"`
	Cities            []string          `yaml:"cities"`
	ServiceTypeNames  map[string]string `yaml:"service_type_names"`
	GeocoderURL       string            `yaml:"geocoder_url"`
	GeocoderUserAgent string            `yaml:"geocoder_user_agent"`
	WatchDebounceMS   int               `yaml:"watch_debounce_ms"`
}

// Load reads the YAML file named by CONFIG_PATH, applies defaults and then
// environment overrides. A missing file is not an error.
func Load() (Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultAddress
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = defaultDriver
	}
	if cfg.Database.LeadsTable == "" {
		cfg.Database.LeadsTable = defaultLeadsTable
	}
	if cfg.RateLimit.Max <= 0 {
		cfg.RateLimit.Max = defaultRateLimitMax
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		cfg.RateLimit.WindowSeconds = defaultRateLimitSecs
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = defaultTokenTTLHours
	}
	if cfg.Estimates.ExpireIntervalMinutes <= 0 {
		cfg.Estimates.ExpireIntervalMinutes = defaultExpireMinutes
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = defaultServiceName
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = defaultStorageBucket
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.FCM.Topic == "" {
		cfg.FCM.Topic = defaultFCMTopic
	}
	applyPipelineDefaults(&cfg.Pipeline)
}

func applyPipelineDefaults(p *PipelineConfig) {
	if p.IncomingDir == "" {
		p.IncomingDir = "./incoming-photos"
	}
	if p.ProcessedDir == "" {
		p.ProcessedDir = "./incoming-photos/processed"
	}
	if p.JobsDir == "" {
		p.JobsDir = "./jobs"
	}
	if p.ClusterMiles <= 0 {
		p.ClusterMiles = 1
	}
	if p.ClusterHours <= 0 {
		p.ClusterHours = 4
	}
	if len(p.Variants) == 0 {
		p.Variants = []Variant{
			{Name: "full", Width: 2400, Quality: 82},
			{Name: "medium", Width: 1200, Quality: 80},
			{Name: "mobile", Width: 600, Quality: 78},
		}
	}
	if len(p.AllowedExtensions) == 0 {
		p.AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".tif", ".tiff"}
	}
	if len(p.BeforeKeywords) == 0 {
		p.BeforeKeywords = []string{"before", "pre", "dirty", "clog", "clogged", "overflow", "raw", "old"}
	}
	if len(p.AfterKeywords) == 0 {
		p.AfterKeywords = []string{"after", "post", "clean", "cleaned", "final", "done", "finished", "result", "complete"}
	}
	if len(p.ServiceKeywords) == 0 {
		p.ServiceKeywords = map[string]string{
			"gutter":    "gutter-cleaning",
			"gutters":   "gutter-cleaning",
			"roof":      "roof-cleaning",
			"moss":      "roof-cleaning",
			"pressure":  "pressure-washing",
			"wash":      "pressure-washing",
			"driveway":  "pressure-washing",
			"christmas": "holiday-lighting",
			"holiday":   "holiday-lighting",
			"lights":    "holiday-lighting",
		}
	}
	if len(p.ServiceTypeNames) == 0 {
		p.ServiceTypeNames = map[string]string{
			"gutter-cleaning":  "Gutter Cleaning",
			"roof-cleaning":    "Roof Cleaning",
			"pressure-washing": "Pressure Washing",
			"holiday-lighting": "Holiday Lighting",
			"unknown":          "Exterior Service",
		}
	}
	if len(p.Cities) == 0 {
		p.Cities = []string{
			"bellevue", "redmond", "kirkland", "issaquah", "sammamish",
			"woodinville", "medina", "clyde-hill", "newcastle", "mercer-island",
		}
	}
	if p.GeocoderURL == "" {
		p.GeocoderURL = defaultGeocoderURL
	}
	if p.GeocoderUserAgent == "" {
		p.GeocoderUserAgent = defaultGeocoderAgent
	}
	if p.WatchDebounceMS <= 0 {
		p.WatchDebounceMS = defaultWatchDebounceM
	}
}

func applyEnv(cfg *Config) error {
	setString(&cfg.LogLevel, "LOG_LEVEL")
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Address = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.LeadsTable, "SUPABASE_LEADS_TABLE")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Features.LeadSubmission, "FEATURE_LEAD_SUBMISSION")
	setString(&cfg.Stripe.SecretKey, "STRIPE_SECRET_KEY")
	setString(&cfg.Stripe.WebhookSecret, "STRIPE_WEBHOOK_SECRET")
	setString(&cfg.HubSpot.APIKey, "HUBSPOT_API_KEY")
	setString(&cfg.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	setString(&cfg.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	setString(&cfg.Twilio.PhoneNumber, "TWILIO_PHONE_NUMBER")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.AMQP.URL, "AMQP_URL")
	setString(&cfg.FCM.CredentialsFile, "FCM_CREDENTIALS_FILE")
	setString(&cfg.FCM.Topic, "FCM_TOPIC")
	setString(&cfg.Storage.Endpoint, "S3_ENDPOINT")
	setString(&cfg.Storage.Region, "S3_REGION")
	setString(&cfg.Storage.Bucket, "S3_BUCKET")
	setString(&cfg.Storage.AccessKey, "S3_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "S3_SECRET_KEY")
	setString(&cfg.Storage.PublicURL, "S3_PUBLIC_URL")
	setString(&cfg.Telemetry.ServiceName, "OTEL_SERVICE_NAME")
	setString(&cfg.Telemetry.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.Pipeline.IncomingDir, "PIPELINE_INCOMING_DIR")
	setString(&cfg.Pipeline.JobsDir, "PIPELINE_JOBS_DIR")

	ints := []struct {
		name string
		dst  *int
	}{
		{"REDIS_DB", &cfg.Redis.DB},
		{"RATE_LIMIT_MAX", &cfg.RateLimit.Max},
		{"RATE_LIMIT_WINDOW_SECONDS", &cfg.RateLimit.WindowSeconds},
		{"JWT_TTL_HOURS", &cfg.Auth.TokenTTLHours},
		{"ESTIMATE_EXPIRE_INTERVAL_MINUTES", &cfg.Estimates.ExpireIntervalMinutes},
	}
	for _, item := range ints {
		v, err := readIntEnv(item.name)
		if err != nil {
			return fmt.Errorf("parse %s: %w", item.name, err)
		}
		if v != nil {
			*item.dst = *v
		}
	}
	return nil
}

// Validate checks the settings the API server cannot start without.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	switch c.Database.Driver {
	case "pgx", "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.WindowSeconds <= 0 {
		return errors.New("rate limit must be positive")
	}
	return nil
}

// LeadSubmissionEnabled is false only when the flag is explicitly "off".
func (c Config) LeadSubmissionEnabled() bool {
	return !strings.EqualFold(strings.TrimSpace(c.Features.LeadSubmission), "off")
}

func setString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func readIntEnv(key string) (*int, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
