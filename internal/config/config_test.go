package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.BaseURL = "http://localhost:8080"
	cfg.Database.Host = "localhost"
	cfg.Database.User = "library"
	cfg.Database.Database = "library_service"
	cfg.Checkout.SecretKey = "sk_test_123"
	cfg.Checkout.WebhookSecret = "whsec_test"
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	return cfg
}

func TestValidate(t *testing.T) {
	t.Run("Defaults are filled in", func(t *testing.T) {
		cfg := validConfig()
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "usd", cfg.Checkout.Currency)
		assert.Equal(t, 24, cfg.Checkout.SessionExpiryHours)
		assert.Equal(t, 15, cfg.Checkout.TimeoutSeconds)
		assert.Equal(t, 60, cfg.JWT.AccessTokenExpiry)
		assert.Equal(t, int64(2), cfg.Billing.FineMultiplier)
		assert.Equal(t, "0 0 8 * * *", cfg.Scheduler.OverdueSweep)
		assert.Equal(t, "0 * * * * *", cfg.Scheduler.ExpirySweep)
	})

	t.Run("Missing checkout secrets fail", func(t *testing.T) {
		cfg := validConfig()
		cfg.Checkout.WebhookSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("Short JWT secret fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWT.Secret = "too-short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Missing base URL fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.BaseURL = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	yaml := `
server:
  host: "0.0.0.0"
  port: 9090
  base_url: "https://library.example.com"
database:
  host: "db"
  user: "library"
  database: "library_service"
checkout:
  secret_key: "sk_test_123"
  webhook_secret: "whsec_test"
  currency: "eur"
jwt:
  secret: "0123456789abcdef0123456789abcdef"
billing:
  fine_multiplier: 3
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "eur", cfg.Checkout.Currency)
	assert.Equal(t, int64(3), cfg.Billing.FineMultiplier)
	assert.Equal(t, "postgres://library:@db:0/library_service?sslmode=", cfg.GetDatabaseConnectionString())
	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddress())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CHECKOUT_SECRET_KEY", "sk_env_override")
	t.Setenv("SERVER_BASE_URL", "https://override.example.com")

	yaml := `
server:
  host: "0.0.0.0"
  port: 8080
  base_url: "http://localhost:8080"
database:
  host: "db"
  user: "library"
  database: "library_service"
checkout:
  secret_key: "sk_from_file"
  webhook_secret: "whsec_test"
jwt:
  secret: "0123456789abcdef0123456789abcdef"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk_env_override", cfg.Checkout.SecretKey)
	assert.Equal(t, "https://override.example.com", cfg.Server.BaseURL)
}
