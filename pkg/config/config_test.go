package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
environment: test
server:
  port: 8080
  read_timeout: 10s
  write_timeout: 10s
  shutdown_timeout: 5s
log:
  level: info
  format: json
  output: stdout
backend:
  type: clickhouse
  batch_size: 100
  batch_timeout: 2s
feed:
  mode: poll
  base_url: https://draws.example.com
  game: wingo
  interval: 1m
  poll_interval: 5s
engine:
  buffer_capacity: 200
  retrain_every_n: 10
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "clickhouse", cfg.Backend.Type)
	assert.Equal(t, "poll", cfg.Feed.Mode)
	assert.Equal(t, "wingo", cfg.Feed.Game)
	assert.Equal(t, 200, cfg.Engine.BufferCapacity)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing environment", func(c *Config) { c.Environment = "" }},
		{"missing backend", func(c *Config) { c.Backend.Type = "" }},
		{"unknown backend", func(c *Config) { c.Backend.Type = "postgres" }},
		{"unknown feed mode", func(c *Config) { c.Feed.Mode = "push" }},
		{"stream without websocket url", func(c *Config) { c.Feed.Mode = "stream"; c.Feed.WebSocketURL = "" }},
		{"poll without base url", func(c *Config) { c.Feed.Mode = "poll"; c.Feed.BaseURL = "" }},
		{"missing game", func(c *Config) { c.Feed.Game = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, sampleYAML))
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("FEED_BASE_URL", "https://override.example.com")
	t.Setenv("FEED_GAME", "k3")
	t.Setenv("BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadWithEnv(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com", cfg.Feed.BaseURL)
	assert.Equal(t, "k3", cfg.Feed.Game)
	assert.Equal(t, "kafka", cfg.Backend.Type)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Cache.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
}
