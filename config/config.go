package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"publisher-platform/logger"
)

// Config carries the full configuration surface for all three services.
// Each binary reads the sections it needs.
type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// AdminPassword seeds the initial admin account on auth API startup.
	AdminPassword string `env:"ADMIN_PASSWORD, default=Admin123$"`

	Database DatabaseConfig
	JWT      JWTConfig
	WebApp   WebAppConfig
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST,     default=localhost"`
	Port     string `env:"DB_PORT,     default=5432"`
	User     string `env:"DB_USER,     default=postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME,     default=publisher"`
	SSLMode  string `env:"DB_SSLMODE,  default=disable"`
}

// DSN renders the postgres connection string consumed by gorm.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// JWTConfig is shared out-of-band by the auth API (issuing) and the
// content API (validating). Both sides must see identical values.
type JWTConfig struct {
	Secret           string `env:"JWT_SECRET,             default=change-this-in-production"`
	Issuer           string `env:"JWT_ISSUER,             default=publisher-auth"`
	Audience         string `env:"JWT_AUDIENCE,           default=publisher-clients"`
	ExpiresInMinutes int    `env:"JWT_EXPIRES_IN_MINUTES, default=60"`
}

// Lifetime returns the configured token lifetime.
func (j JWTConfig) Lifetime() time.Duration {
	return time.Duration(j.ExpiresInMinutes) * time.Minute
}

type WebAppConfig struct {
	AuthAPIBaseURL    string `env:"AUTH_API_BASE_URL,    default=http://localhost:8081/api/v1"`
	ContentAPIBaseURL string `env:"CONTENT_API_BASE_URL, default=http://localhost:8082/api/v1"`
	SessionSecret     string `env:"SESSION_SECRET,       default=change-this-session-secret"`
	RequestTimeout    int    `env:"HTTP_TIMEOUT_SECONDS, default=10"`
}

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Get().Debug().Msg("no .env file found, using process environment")
	}

	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
