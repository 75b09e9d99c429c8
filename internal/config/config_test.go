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

func TestLoad_Defaults(t *testing.T) {
	conf, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, conf.Server.Port)
	assert.Equal(t, "memory", conf.Cache.Backend)
	assert.Equal(t, 500, conf.Backup.ChunkSize)
	assert.Equal(t, 50, conf.Backup.DeletePageSize)
	assert.Equal(t, 7, conf.Backup.PeriodicityDays)
	assert.Equal(t, "backups/", conf.Backup.AttachmentPrefix)
	assert.Equal(t, "driving-hgv", conf.Directions.Profile)
	assert.Equal(t, 15*time.Second, conf.Directions.Timeout)
	assert.Equal(t, "America/Sao_Paulo", conf.Location().String())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
timezone: UTC
server:
  port: 9000
logger:
  level: debug
directions:
  provider: mock
cache:
  backend: redis
  redisAddr: localhost:6379
  ttl: 1h
kafka:
  enabled: true
  topic: ops.events
`)
	t.Setenv("LOGISTICS_SERVER_PORT", "9191")
	t.Setenv("LOGISTICS_KAFKA_BROKERS", "k1:9092,k2:9092")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, conf.Server.Port)
	assert.Equal(t, "debug", conf.Logger.Level)
	assert.Equal(t, "redis", conf.Cache.Backend)
	assert.Equal(t, time.Hour, conf.Cache.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, conf.Kafka.Brokers)
	assert.Equal(t, "ops.events", conf.Kafka.Topic)
	assert.Equal(t, time.UTC, conf.Location())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		Timezone:   "America/Sao_Paulo",
		Server:     ServerConfig{Port: 8080},
		Database:   DatabaseConfig{URL: "postgres://localhost/logistics"},
		Logger:     LoggerConfig{Level: "info"},
		Directions: DirectionsConfig{Provider: "ors", APIKey: "k"},
		Cache:      CacheConfig{Backend: "memory"},
		Backup: BackupConfig{
			ChunkSize:        500,
			DeletePageSize:   50,
			PeriodicityDays:  7,
			AttachmentPrefix: "backups/",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, false},
		{"unknown log level", func(c *Config) { c.Logger.Level = "verbose" }, false},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, false},
		{"chunk above write limit", func(c *Config) { c.Backup.ChunkSize = 501 }, false},
		{"unknown directions provider", func(c *Config) { c.Directions.Provider = "google" }, false},
		{"redis without address", func(c *Config) { c.Cache.Backend = "redis" }, false},
		{"archive without bucket", func(c *Config) { c.Archive.Enabled = true }, false},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Topic = "t" }, false},
		{"unknown timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			err := c.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
