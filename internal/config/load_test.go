package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.ModelName)
	assert.Equal(t, 5, cfg.Gemini.CardsPerTopic)
	assert.Equal(t, 3, cfg.Gemini.MaxRetries)
	assert.Empty(t, cfg.Gemini.APIKey)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PARLO_SERVER_PORT", "9090")
	t.Setenv("PARLO_SERVER_LOG_LEVEL", "debug")
	t.Setenv("PARLO_STORE_DRIVER", "sqlite")
	t.Setenv("PARLO_STORE_DSN", "/tmp/cards.db")
	t.Setenv("PARLO_GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/cards.db", cfg.Store.DSN)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "PARLO_SERVER_PORT", "70000"},
		{"unknown log level", "PARLO_SERVER_LOG_LEVEL", "verbose"},
		{"unknown store driver", "PARLO_STORE_DRIVER", "mysql"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRequiresDSNForDatabaseDrivers(t *testing.T) {
	t.Setenv("PARLO_STORE_DRIVER", "postgres")

	_, err := Load()
	assert.Error(t, err, "postgres driver without a DSN must be rejected")
}
