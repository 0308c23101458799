package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Unterstützte Werte für DB_DRIVER und SESSION_BACKEND.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBDriver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"articles"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"app.db"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"5555"`

	// Session-Speicher
	SessionBackend       string        `envconfig:"SESSION_BACKEND" default:"memory"`
	SessionCookieName    string        `envconfig:"SESSION_COOKIE_NAME" default:"session"`
	SessionCookieSecure  bool          `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
	SessionTTL           time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SessionSweepSchedule string        `envconfig:"SESSION_SWEEP_SCHEDULE" default:"*/10 * * * *"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Paywall
	MaxPageViews             int  `envconfig:"MAX_PAGE_VIEWS" default:"3"`
	ArticlePlaceholderOnMiss bool `envconfig:"ARTICLE_PLACEHOLDER_ON_MISS" default:"true"`

	SeedDemo bool `envconfig:"SEED_DEMO" default:"false"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Validate prüft Werte, die envconfig selbst nicht einschränken kann.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DBUser == "" {
			return fmt.Errorf("DB_USER is required for driver %q", c.DBDriver)
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}

	if c.MaxPageViews < 1 {
		return fmt.Errorf("MAX_PAGE_VIEWS must be positive, got %d", c.MaxPageViews)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
