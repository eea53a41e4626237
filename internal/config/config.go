// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	DatabaseURL  string `env:"DATABASE_URL"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"geniusclasses.db"`
	S3           S3     `envPrefix:"S3_"`

	AdminUsername     string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string        `env:"JWT_SECRET"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"8h"`
	SecureCookies     bool          `env:"SECURE_COOKIES" envDefault:"false"`

	Listmonk Listmonk `envPrefix:"LISTMONK_"`

	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	WebhookURL      string `env:"WEBHOOK_URL"`
	WebhookSecret   string `env:"WEBHOOK_SECRET"`

	// SiteFile replaces the built-in institute data with a TOML document.
	SiteFile              string `env:"SITE_FILE"`
	AllowedFrameAncestors string `env:"ALLOWED_FRAME_ANCESTORS"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
}

type S3 struct {
	Endpoint  string `env:"ENDPOINT"`
	Bucket    string `env:"BUCKET" envDefault:"geniusclasses"`
	Prefix    string `env:"PREFIX" envDefault:"kv/"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Region    string `env:"REGION" envDefault:"ap-south-1"`
}

type Listmonk struct {
	URL        string `env:"URL"`
	User       string `env:"USER" envDefault:"admin"`
	Password   string `env:"PASSWORD"`
	TemplateID int    `env:"TEMPLATE_ID" envDefault:"0"`
	InboxEmail string `env:"INBOX_EMAIL"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom is Load with an explicit environment; nil means the process
// environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 backend"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}
	if c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH is required (see the hash-password command)"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("BASE_URL: %w", err))
	}
	if c.WebhookURL != "" && c.WebhookSecret == "" {
		errs = append(errs, errors.New("WEBHOOK_SECRET is required when WEBHOOK_URL is set"))
	}

	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
