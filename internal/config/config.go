package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the bot. It is read once at startup
// and never mutated afterwards.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	// WhatsApp Cloud API
	AccessToken   string `env:"WHATSAPP_ACCESS_TOKEN"`
	PhoneNumberID string `env:"WHATSAPP_PHONE_NUMBER_ID"`
	VerifyToken   string `env:"WHATSAPP_VERIFY_TOKEN"`
	AppSecret     string `env:"WHATSAPP_APP_SECRET"`
	APIBase       string `env:"WHATSAPP_API_BASE" envDefault:"https://graph.facebook.com"`
	APIVersion    string `env:"WHATSAPP_API_VERSION" envDefault:"v21.0"`
	DisplayPhone  string `env:"WHATSAPP_DISPLAY_PHONE"`

	// Storage. DATABASE_URL selects Postgres, otherwise SQLite is used.
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/commercebot.db"`
	RedisURL    string `env:"REDIS_URL"`

	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"30"`
	DedupRetention  time.Duration `env:"DEDUP_RETENTION" envDefault:"48h"`
	PruneSchedule   string        `env:"PRUNE_SCHEDULE" envDefault:"*/15 * * * *"`

	CatalogueCSV string        `env:"CATALOGUE_CSV"`
	SendTimeout  time.Duration `env:"SEND_TIMEOUT" envDefault:"10s"`
	LeadSource   string        `env:"LEAD_SOURCE" envDefault:"whatsapp_demo"`
	HistoryLimit int           `env:"HISTORY_LIMIT" envDefault:"5"`

	// Admin API
	JWTSecret         string `env:"JWT_SECRET"`
	AdminUsername     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
}

// Load reads configuration from the environment.
// A .env file is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.RateLimitMax <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be positive"))
	}
	if c.DedupRetention <= 0 {
		errs = append(errs, errors.New("DEDUP_RETENTION must be positive"))
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, errors.New("HISTORY_LIMIT must be positive"))
	}

	if c.IsProduction() {
		if c.AppSecret == "" {
			errs = append(errs, errors.New("WHATSAPP_APP_SECRET is required in production"))
		}
		if c.VerifyToken == "" {
			errs = append(errs, errors.New("WHATSAPP_VERIFY_TOKEN is required in production"))
		}
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// MessagesURL is the Graph API endpoint replies are posted to.
func (c *Config) MessagesURL() string {
	return fmt.Sprintf("%s/%s/%s/messages", c.APIBase, c.APIVersion, c.PhoneNumberID)
}
