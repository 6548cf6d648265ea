package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	Addr      string
	PublicURL *url.URL
	DBDSN     string
	LogLevel  string

	ResetTokenTTL  time.Duration
	RequestTimeout time.Duration

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPTLSMode   string
	SMTPFromEmail string
	SMTPFromName  string

	BootstrapEmail    string
	BootstrapPassword string
}

func Load() (Config, error) {
	// Best effort: a missing .env file is the normal case outside dev.
	_ = godotenv.Load()
	return LoadFromEnv(os.Getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:      getenv("APP_ENV"),
		Addr:     getenv("APP_ADDR"),
		DBDSN:    getenv("APP_DB_DSN"),
		LogLevel: getenv("APP_LOG_LEVEL"),

		SMTPHost:      getenv("APP_SMTP_HOST"),
		SMTPUsername:  getenv("APP_SMTP_USERNAME"),
		SMTPPassword:  getenv("APP_SMTP_PASSWORD"),
		SMTPTLSMode:   getenv("APP_SMTP_TLS_MODE"),
		SMTPFromEmail: strings.TrimSpace(strings.ToLower(getenv("APP_SMTP_FROM_EMAIL"))),
		SMTPFromName:  strings.TrimSpace(getenv("APP_SMTP_FROM_NAME")),

		BootstrapEmail:    strings.TrimSpace(strings.ToLower(getenv("APP_BOOTSTRAP_EMAIL"))),
		BootstrapPassword: getenv("APP_BOOTSTRAP_PASSWORD"),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.SMTPFromName == "" {
		cfg.SMTPFromName = "Account Service"
	}

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	publicURLRaw := getenv("APP_PUBLIC_URL")
	if publicURLRaw != "" {
		parsed, err := url.Parse(publicURLRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_PUBLIC_URL: %w", err)
		}
		if !parsed.IsAbs() || parsed.Host == "" {
			return Config{}, errors.New("APP_PUBLIC_URL: must be an absolute URL")
		}
		switch parsed.Scheme {
		case "http", "https":
		default:
			return Config{}, errors.New("APP_PUBLIC_URL: scheme must be http or https")
		}
		cfg.PublicURL = parsed
	}

	ttl, err := durationOrDefault(getenv("APP_RESET_TOKEN_TTL"), 30*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("APP_RESET_TOKEN_TTL: %w", err)
	}
	cfg.ResetTokenTTL = ttl

	reqTimeout, err := durationOrDefault(getenv("APP_REQUEST_TIMEOUT"), 5*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("APP_REQUEST_TIMEOUT: %w", err)
	}
	cfg.RequestTimeout = reqTimeout

	portRaw := getenv("APP_SMTP_PORT")
	if portRaw == "" {
		cfg.SMTPPort = 587
	} else {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, errors.New("APP_SMTP_PORT: must be a valid port number")
		}
		cfg.SMTPPort = port
	}

	switch cfg.SMTPTLSMode {
	case "", "starttls", "tls", "none":
	default:
		return Config{}, errors.New("APP_SMTP_TLS_MODE: must be one of starttls, tls, none")
	}

	if cfg.BootstrapPassword != "" && cfg.BootstrapEmail == "" {
		return Config{}, errors.New("APP_BOOTSTRAP_EMAIL: required when APP_BOOTSTRAP_PASSWORD is set")
	}

	if cfg.IsProd() {
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if cfg.PublicURL == nil {
			return Config{}, errors.New("APP_PUBLIC_URL: required in prod")
		}
		if cfg.SMTPHost == "" || cfg.SMTPFromEmail == "" {
			return Config{}, errors.New("APP_SMTP_HOST and APP_SMTP_FROM_EMAIL: required in prod")
		}
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func durationOrDefault(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("must be > 0")
	}
	return d, nil
}
