package cmd

import (
	"errors"
	"fmt"
	"time"

	"expedition/internal/adapters/out/postgres"
	"expedition/internal/pkg/errs"

	"github.com/caarlos0/env/v11"
)

// Draft backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"expedition"`

	DraftBackend   string        `env:"DRAFT_BACKEND" envDefault:"memory"`
	DraftRetention time.Duration `env:"DRAFT_RETENTION" envDefault:"168h"`

	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	NominatimURL      string        `env:"NOMINATIM_URL" envDefault:"https://nominatim.openstreetmap.org"`
	OSRMURL           string        `env:"OSRM_URL" envDefault:"https://router.project-osrm.org"`
	GeoUserAgent      string        `env:"GEO_USER_AGENT" envDefault:"expedition/1.0"`
	SubmissionBaseURL string        `env:"SUBMISSION_BASE_URL"`
	ExternalTimeout   time.Duration `env:"EXTERNAL_CALL_TIMEOUT" envDefault:"15s"`

	// ClientID is sent with every submission; empty submits as guest.
	ClientID string `env:"CLIENT_ID"`

	SessionIdleTTL   time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	EvictionSchedule string        `env:"SESSION_EVICTION_SCHEDULE" envDefault:"0 * * * * *"`
	PurgeSchedule    string        `env:"DRAFT_PURGE_SCHEDULE" envDefault:"0 0 3 * * *"`
	AccountNudge     time.Duration `env:"ACCOUNT_NUDGE_AFTER" envDefault:"0s"`

	OTELEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// LoadConfig parses the environment and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var result error
	switch c.DraftBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		result = errors.Join(result, c.Database().Validate())
	default:
		result = errors.Join(result, errs.NewValueIsInvalidErrorWithCause("DRAFT_BACKEND",
			fmt.Errorf("%q is not one of memory, redis, postgres", c.DraftBackend)))
	}
	if c.SubmissionBaseURL == "" {
		result = errors.Join(result, errs.NewValueIsRequiredError("SUBMISSION_BASE_URL"))
	}
	if c.ExternalTimeout <= 0 {
		result = errors.Join(result, errs.NewValueIsOutOfRangeError("EXTERNAL_CALL_TIMEOUT", c.ExternalTimeout, "1ns", "∞"))
	}
	return result
}

// Database returns the postgres connection settings.
func (c Config) Database() postgres.Config {
	return postgres.Config{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSslMode,
	}
}
