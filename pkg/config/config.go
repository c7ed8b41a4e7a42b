package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds everything the server and the relay read from the environment.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	LogMode string `env:"LOG_MODE" envDefault:"development"`
	Port    string `env:"PORT" envDefault:"5000"`

	// Public base URL of this server, used to build public object URLs for the disk backend.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://127.0.0.1:5000"`
	// Anonymous API key clients must send in the apikey header. Empty disables the check.
	AnonKey string `env:"ANON_KEY"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`

	// Database
	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN" envDefault:"app.db"`

	// Identity
	JWTSecret   string        `env:"JWT_SECRET_KEY"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	RedisAddr   string        `env:"REDIS_ADDRESS"`
	RedisPass   string        `env:"REDIS_PASSWORD"`
	RevokeCache int           `env:"REVOKE_CACHE_MAX_ITEMS" envDefault:"10000"`

	// Completion service (OpenAI compatible)
	CompletionBaseURL string        `env:"COMPLETION_BASE_URL" envDefault:"https://ai.gateway.lovable.dev/v1"`
	CompletionAPIKey  string        `env:"COMPLETION_API_KEY"`
	CompletionModel   string        `env:"COMPLETION_MODEL" envDefault:"google/gemini-2.5-flash"`
	CompletionTimeout time.Duration `env:"COMPLETION_TIMEOUT" envDefault:"120s"`

	// Blob storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"disk"`
	StorageBucket  string `env:"STORAGE_BUCKET" envDefault:"chat-uploads"`
	StorageDir     string `env:"STORAGE_DIR" envDefault:"./uploads"`
	GCSCredentials string `env:"GCS_CREDENTIALS_FILE"`
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }
func (c *Config) IsStaging() bool    { return c.AppEnv == "staging" }

// Load reads .env (outside production) and parses the environment into a Config.
func Load() (*Config, error) {
	// do not load .env file in production
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations env tags cannot express.
func (c *Config) Validate() error {
	if !slices.Contains([]string{"development", "staging", "production"}, c.AppEnv) {
		return fmt.Errorf("APP_ENV must be 'development', 'staging' or 'production', got %q", c.AppEnv)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET_KEY must be set in production")
	}
	if c.JWTSecret == "" {
		c.JWTSecret = "dev-secret-change-me"
	}
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if !slices.Contains([]string{"sqlite", "postgres", "mysql"}, c.DBDriver) {
		return fmt.Errorf("DB_DRIVER must be sqlite, postgres or mysql, got %q", c.DBDriver)
	}
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	if !slices.Contains([]string{"disk", "gcs"}, c.StorageBackend) {
		return fmt.Errorf("STORAGE_BACKEND must be disk or gcs, got %q", c.StorageBackend)
	}
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
	return nil
}
