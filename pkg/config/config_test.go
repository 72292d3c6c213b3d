package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "finvoice", cfg.Database.DBName)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "GigaChat", cfg.GigaChat.Model)
	assert.Equal(t, 0.2, cfg.GigaChat.Temperature)
	assert.True(t, cfg.Parser.RequireCategory)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GIGACHAT_TEMPERATURE", "0.5")
	t.Setenv("PARSE_REQUIRE_CATEGORY", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 0.5, cfg.GigaChat.Temperature)
	assert.False(t, cfg.Parser.RequireCategory)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_BadTemperatureFallsBack(t *testing.T) {
	t.Setenv("GIGACHAT_TEMPERATURE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.2, cfg.GigaChat.Temperature)
}
