// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	MailProviderMailgun = "mailgun"
	MailProviderSMTP    = "smtp"
	MailProviderLog     = "log"

	devSessionSecret = "some-secret-key-for-dev-only"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	DatabaseURL   string `env:"DATABASE_URL"`
	PSQLHost      string `env:"PSQL_HOST" envDefault:"localhost"`
	PSQLPort      string `env:"PSQL_PORT" envDefault:"5432"`
	PSQLUser      string `env:"PSQL_USER" envDefault:"postgres"`
	PSQLPassword  string `env:"PSQL_PASSWORD" envDefault:"postgres"`
	PSQLDBName    string `env:"PSQL_DB_NAME" envDefault:"authapi"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	SessionSecret     string        `env:"SESSION_SECRET"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	AppURL        string        `env:"APP_URL"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`

	MailProvider     string `env:"MAIL_PROVIDER" envDefault:"log"`
	MailgunAPIKey    string `env:"MAILGUN_API_KEY"`
	MailgunDomain    string `env:"MAILGUN_DOMAIN"`
	MailgunFromEmail string `env:"MAILGUN_FROM_EMAIL"`
	MailgunAPIBase   string `env:"MAILGUN_API_BASE" envDefault:"https://api.mailgun.net/v3"`
	SMTPHost         string `env:"SMTP_HOST"`
	SMTPPort         string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser         string `env:"SMTP_USER"`
	SMTPPassword     string `env:"SMTP_PASSWORD"`
	SMTPFrom         string `env:"SMTP_FROM"`
	SMTPUseTLS       bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DatabaseURL == "" {
		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cfg.PSQLUser, cfg.PSQLPassword),
			Host:   cfg.PSQLHost + ":" + cfg.PSQLPort,
			Path:   cfg.PSQLDBName,
		}
		q := u.Query()
		q.Set("sslmode", "disable")
		u.RawQuery = q.Encode()
		cfg.DatabaseURL = u.String()
	}

	if cfg.SessionSecret == "" && !cfg.IsProduction() {
		cfg.SessionSecret = devSessionSecret
	}
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.MailProvider {
	case MailProviderMailgun:
		if c.MailgunAPIKey == "" || c.MailgunDomain == "" || c.MailgunFromEmail == "" {
			return fmt.Errorf("MAILGUN_API_KEY, MAILGUN_DOMAIN and MAILGUN_FROM_EMAIL are required for the mailgun provider")
		}
	case MailProviderSMTP:
		if c.SMTPHost == "" || c.SMTPFrom == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_FROM are required for the smtp provider")
		}
	case MailProviderLog:
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider)
	}

	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be positive")
	}

	if c.IsProduction() {
		if c.SessionSecret == devSessionSecret {
			return fmt.Errorf("SESSION_SECRET must be set in production")
		}
		if c.AppURL == "" {
			return fmt.Errorf("APP_URL must be set in production")
		}
	}
	return nil
}
