package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "direct", c.Backend.Type)
	assert.Equal(t, "memory", c.Storage.Sales)
	assert.Equal(t, time.Hour, c.Cache.ForecastTTL)
	assert.LessOrEqual(t, c.Cache.MemoryTTL, MaxSharedMemoryTTL)
}

func TestMemoryTTLBoundOnlyWithRedis(t *testing.T) {
	c := Default()
	c.Cache.MemoryTTL = time.Minute
	require.NoError(t, c.Validate())

	c.Redis.Enabled = true
	c.Redis.Addr = "localhost:6379"
	assert.ErrorContains(t, c.Validate(), "cache.memory_ttl")

	c.Cache.MemoryTTL = MaxSharedMemoryTTL
	assert.NoError(t, c.Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: staging
server:
  port: 9090
cache:
  forecast_ttl: 30m
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 30*time.Minute, c.Cache.ForecastTTL)
	assert.Equal(t, 15*time.Second, c.Server.ShutdownTimeout)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"kafka without brokers": "backend:\n  type: kafka\n",
		"unknown backend":       "backend:\n  type: rabbit\n",
		"clickhouse no host":    "storage:\n  sales: clickhouse\n",
		"postgres no url":       "storage:\n  inventory: postgres\n",
		"warmup without redis":  "warmup:\n  enabled: true\n",
		"long shared l1 ttl":    "redis:\n  enabled: true\n  addr: localhost:6379\ncache:\n  memory_ttl: 1m\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("STOCKPULSE_PORT", "7000")
	t.Setenv("STOCKPULSE_SEED", "42")
	t.Setenv("BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ADDR", "cache:6379")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7000, c.Server.Port)
	assert.Equal(t, int64(42), c.Forecast.Seed)
	assert.Equal(t, "kafka", c.Backend.Type)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Redis.Enabled)
}

func TestLoadWithEnvBadPortKeepsDefault(t *testing.T) {
	t.Setenv("STOCKPULSE_PORT", "not-a-port")
	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Server.Port)
}
