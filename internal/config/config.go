package config

import (
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env        string     `yaml:"env" env:"APP_ENV" env-default:"production"`
	Server     Server     `yaml:"server"`
	Log        Log        `yaml:"log"`
	Database   Database   `yaml:"database"`
	Dialogflow Dialogflow `yaml:"dialogflow"`
	Auth       Auth       `yaml:"auth"`
	CORS       CORS       `yaml:"cors"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
	S3         S3         `yaml:"s3"`
	Analytics  Analytics  `yaml:"analytics"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Log holds logger configuration
type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// Database holds database configuration
type Database struct {
	PostgresDSN    string        `yaml:"postgres_dsn" env:"DATABASE_URL"`
	MaxConns       int32         `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"25"`
	MinConns       int32         `yaml:"min_conns" env:"DB_MIN_CONNS" env-default:"5"`
	ConnLifetime   time.Duration `yaml:"conn_lifetime" env:"DB_CONN_LIFETIME" env-default:"5m"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT" env-default:"15s"`
	AutoMigrate    bool          `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
}

// Dialogflow holds NLU agent configuration
type Dialogflow struct {
	ProjectID       string        `yaml:"project_id" env:"GOOGLE_PROJECT_ID"`
	Location        string        `yaml:"location" env:"DIALOGFLOW_LOCATION" env-default:"global"`
	LanguageCode    string        `yaml:"language_code" env:"DIALOGFLOW_LANGUAGE_CODE" env-default:"en"`
	CredentialsJSON string        `yaml:"credentials_json" env:"GOOGLE_CREDENTIALS_JSON"`
	Timeout         time.Duration `yaml:"timeout" env:"DIALOGFLOW_TIMEOUT" env-default:"15s"`
}

// Auth holds admin authentication configuration
type Auth struct {
	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL      time.Duration `yaml:"token_ttl" env:"JWT_TTL" env-default:"24h"`
	AdminUsername string        `yaml:"admin_username" env:"ADMIN_USERNAME"`
	AdminPassword string        `yaml:"admin_password" env:"ADMIN_PASSWORD"`
}

// CORS holds cross-origin configuration for the dashboard
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"FRONTEND_URL" env-separator:"," env-default:"http://localhost:3000"`
}

// RateLimit holds per-IP limits for public chat routes
type RateLimit struct {
	ChatRequests int           `yaml:"chat_requests" env:"RATE_LIMIT_CHAT_REQUESTS" env-default:"30"`
	Window       time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1m"`
}

// S3 holds S3/MinIO storage configuration for transcript exports
type S3 struct {
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"exports"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	PublicURL       string `yaml:"public_url" env:"S3_PUBLIC_URL" env-default:"http://localhost:9000/exports"`
	Prefix          string `yaml:"prefix" env:"S3_PREFIX" env-default:"transcripts"`
}

// Analytics holds report configuration
type Analytics struct {
	Timeout time.Duration `yaml:"timeout" env:"ANALYTICS_TIMEOUT" env-default:"20s"`
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// SlogLevel maps Log.Level to a slog level. Development forces debug.
func (c *Config) SlogLevel() slog.Level {
	if c.IsDevelopment() {
		return slog.LevelDebug
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks required values and ranges
func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Database.MinConns < 0 || c.Database.MaxConns <= 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("invalid pool size: min %d, max %d", c.Database.MinConns, c.Database.MaxConns)
	}
	if c.RateLimit.ChatRequests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_CHAT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	if c.Analytics.Timeout <= 0 {
		return fmt.Errorf("ANALYTICS_TIMEOUT must be positive, got %s", c.Analytics.Timeout)
	}
	return nil
}

type requiredField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredField {
	return []requiredField{
		{name: "DATABASE_URL", value: c.Database.PostgresDSN},
		{name: "GOOGLE_PROJECT_ID", value: c.Dialogflow.ProjectID},
		{name: "JWT_SECRET", value: c.Auth.JWTSecret},
		{name: "ADMIN_USERNAME", value: c.Auth.AdminUsername},
		{name: "ADMIN_PASSWORD", value: c.Auth.AdminPassword},
	}
}

// MustLoad loads configuration from environment and exits on error
func MustLoad() *Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	return &cfg
}

// LoadFromFile loads configuration from a YAML file, with environment
// variables taking precedence
func LoadFromFile(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
