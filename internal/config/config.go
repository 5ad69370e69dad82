package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const ProdEnv = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Comma separated; only used in production, dev allows localhost.
	ProdOrigins []string `envconfig:"PROD_ORIGINS"`

	DBDSN         string `envconfig:"DB_DSN" required:"true"`
	DBMaxConns    int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	RunMigrations bool   `envconfig:"RUN_MIGRATIONS" default:"true"`

	EventsBackend  string   `envconfig:"EVENTS_BACKEND" default:"none"`
	KafkaBrokers   []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic     string   `envconfig:"KAFKA_TOPIC" default:"booking-events"`
	RabbitURL      string   `envconfig:"RABBIT_URL"`
	RabbitExchange string   `envconfig:"RABBIT_EXCHANGE" default:"booking.exchange"`

	OTelEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTelEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
}

// IsProduction reports whether APP_ENV selects the production profile.
func (c *Config) IsProduction() bool {
	return c.AppEnv == ProdEnv
}

// Load loads configuration from .env files (optional) and environment variables.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	// envconfig only rejects unset required keys, not empty ones.
	if strings.TrimSpace(c.DBDSN) == "" {
		return errors.New("DB_DSN is required")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}

	c.EventsBackend = strings.ToLower(strings.TrimSpace(c.EventsBackend))
	switch c.EventsBackend {
	case "none":
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when EVENTS_BACKEND=kafka")
		}
	case "rabbitmq":
		if c.RabbitURL == "" {
			return errors.New("RABBIT_URL is required when EVENTS_BACKEND=rabbitmq")
		}
	default:
		return fmt.Errorf("invalid EVENTS_BACKEND %q", c.EventsBackend)
	}
	return nil
}
