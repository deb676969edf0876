package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Database:   Database{PostgresDSN: "postgres://u:p@localhost:5432/supportbot", MaxConns: 10, MinConns: 1},
		Dialogflow: Dialogflow{ProjectID: "demo"},
		Auth: Auth{
			JWTSecret:     "0123456789abcdef",
			TokenTTL:      time.Hour,
			AdminUsername: "admin",
			AdminPassword: "secret",
		},
		RateLimit: RateLimit{ChatRequests: 10, Window: time.Minute},
		Analytics: Analytics{Timeout: time.Second},
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing dsn", func(c *Config) { c.Database.PostgresDSN = "" }, "DATABASE_URL"},
		{"missing project", func(c *Config) { c.Dialogflow.ProjectID = "" }, "GOOGLE_PROJECT_ID"},
		{"missing admin", func(c *Config) { c.Auth.AdminPassword = "" }, "ADMIN_PASSWORD"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "16 characters"},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, "JWT_TTL"},
		{"pool inverted", func(c *Config) { c.Database.MinConns = 20 }, "pool size"},
		{"no rate limit", func(c *Config) { c.RateLimit.ChatRequests = 0 }, "RATE_LIMIT"},
		{"no analytics timeout", func(c *Config) { c.Analytics.Timeout = 0 }, "ANALYTICS_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := validConfig()

	cfg.Log.Level = "warn"
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())

	cfg.Log.Level = "nonsense"
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())

	cfg.Env = "development"
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestServerAddress(t *testing.T) {
	assert.Equal(t, "127.0.0.1:9090", Server{Host: "127.0.0.1", Port: "9090"}.Address())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
env: development
database:
  postgres_dsn: postgres://u:p@db:5432/supportbot
dialogflow:
  project_id: demo-agent
  location: europe-west1
auth:
  jwt_secret: 0123456789abcdef0123
  admin_username: admin
  admin_password: secret
cors:
  allowed_origins:
    - https://admin.example.com
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "demo-agent", cfg.Dialogflow.ProjectID)
	assert.Equal(t, "europe-west1", cfg.Dialogflow.Location)
	assert.Equal(t, "en", cfg.Dialogflow.LanguageCode, "defaults still apply")
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"https://admin.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("env: production\n"), 0o600))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}
