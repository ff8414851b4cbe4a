package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Payments   PaymentsConfig   `yaml:"payments"`
	Booking    BookingConfig    `yaml:"booking"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Admin      AdminConfig      `yaml:"admin"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// PaymentsConfig wires the external checkout provider. Enabled is consulted
// by the lifecycle API on every checkout request, not cached at startup.
type PaymentsConfig struct {
	Enabled         bool   `yaml:"enabled"`
	ProviderURL     string `yaml:"provider_url"`
	APIKey          string `yaml:"api_key"`
	SigningSecret   string `yaml:"signing_secret"`
	SignatureHeader string `yaml:"signature_header"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	MaxRetries      int    `yaml:"max_retries"`
	SuccessURL      string `yaml:"success_url"`
	CancelURL       string `yaml:"cancel_url"`
}

type BookingConfig struct {
	MinLeadDays    int `yaml:"min_lead_days"`
	MaxAdvanceDays int `yaml:"max_advance_days"`
	MaxGuests      int `yaml:"max_guests"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type AdminConfig struct {
	HeaderAPIKey string           `yaml:"header_api_key"`
	HeaderExtra  string           `yaml:"header_extra"`
	APIKeys      []AdminClientKey `yaml:"api_keys"`
	RateLimit    RateLimitConfig  `yaml:"rate_limit"`
}

type AdminClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; env vars may come from the environment directly
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} references before parsing so secrets stay out of YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Catalog.Path == "" {
		return errors.New("catalog path is required")
	}

	if c.Payments.Enabled {
		if c.Payments.ProviderURL == "" {
			return errors.New("payments provider url is required when payments are enabled")
		}
		if c.Payments.SigningSecret == "" || c.Payments.SigningSecret == "YOUR_SIGNING_SECRET_HERE" {
			return errors.New("payments signing secret is required when payments are enabled")
		}
	}

	if c.Booking.MinLeadDays < 0 {
		return fmt.Errorf("booking min_lead_days must not be negative, got %d", c.Booking.MinLeadDays)
	}
	if c.Booking.MaxAdvanceDays < c.Booking.MinLeadDays {
		return fmt.Errorf("booking max_advance_days %d is below min_lead_days %d",
			c.Booking.MaxAdvanceDays, c.Booking.MinLeadDays)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Payments.TimeoutSeconds == 0 {
		c.Payments.TimeoutSeconds = models.DefaultProviderTimeout
	}
	if c.Payments.MaxRetries == 0 {
		c.Payments.MaxRetries = 2
	}
	if c.Payments.SignatureHeader == "" {
		c.Payments.SignatureHeader = "X-Payment-Signature"
	}

	if c.Booking.MinLeadDays == 0 {
		c.Booking.MinLeadDays = models.DefaultMinLeadDays
	}
	if c.Booking.MaxAdvanceDays == 0 {
		c.Booking.MaxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	if c.Booking.MaxGuests == 0 {
		c.Booking.MaxGuests = models.DefaultMaxGuests
	}

	if c.Admin.HeaderAPIKey == "" {
		c.Admin.HeaderAPIKey = "x-api-key"
	}
	if c.Admin.HeaderExtra == "" {
		c.Admin.HeaderExtra = "x-api-extra"
	}
}
