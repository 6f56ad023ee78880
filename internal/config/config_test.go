package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APOLLO_API_KEY", "test-key")
}

func TestLoad_Defaults(t *testing.T) {
	validEnv(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.PublicURL)
	assert.Equal(t, "https://api.apollo.io", cfg.ApolloBaseURL)
	assert.Equal(t, 30*time.Second, cfg.PhoneWaitTimeout)
	assert.Equal(t, time.Hour, cfg.PayloadMaxAge)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisAddress)
}

func TestLoad_Overrides(t *testing.T) {
	validEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("PUBLIC_URL", "https://enrich.example.com")
	t.Setenv("PHONE_WAIT_TIMEOUT", "45s")
	t.Setenv("PAYLOAD_MAX_AGE", "30m")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://enrich.example.com", cfg.PublicURL)
	assert.Equal(t, 45*time.Second, cfg.PhoneWaitTimeout)
	assert.Equal(t, 30*time.Minute, cfg.PayloadMaxAge)
}

func TestLoad_InvalidDurationFallsBackToDefault(t *testing.T) {
	validEnv(t)
	t.Setenv("PHONE_WAIT_TIMEOUT", "not-a-duration")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.PhoneWaitTimeout)
}

func TestCallbackURL(t *testing.T) {
	validEnv(t)
	t.Setenv("PUBLIC_URL", "https://enrich.example.com/")

	cfg := Load()

	assert.Equal(t, "https://enrich.example.com/webhooks/apollo", cfg.CallbackURL())
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		validEnv(t)
		require.NoError(t, Load().Validate())
	})

	t.Run("missing apollo key", func(t *testing.T) {
		cfg := Load()
		cfg.ApolloAPIKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		validEnv(t)
		cfg := Load()
		cfg.Port = "not-a-port"
		assert.Error(t, cfg.Validate())
	})

	t.Run("relative public url", func(t *testing.T) {
		validEnv(t)
		cfg := Load()
		cfg.PublicURL = "/just/a/path"
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive wait timeout", func(t *testing.T) {
		validEnv(t)
		cfg := Load()
		cfg.PhoneWaitTimeout = 0
		assert.Error(t, cfg.Validate())
	})
}
