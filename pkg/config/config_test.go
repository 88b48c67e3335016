package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
service_name = "pricebook-usdinr"
environment = "staging"

[book]
instrument = "USDINR"
authorized_sources = ["LP1", "LP2", "LP3"]

[book.source_registry]
enabled = false

[audit]
buffer_size = 64

[kafka]
brokers = ["kafka-1:9092", "kafka-2:9092"]
topic = "fx.quotes.usdinr"

[logger]
level = "debug"
format = "text"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "pricebook-usdinr", cfg.ServiceName)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "USDINR", cfg.Book.Instrument)
	assert.Equal(t, []string{"LP1", "LP2", "LP3"}, cfg.Book.AuthorizedSources)
	assert.Equal(t, 64, cfg.Audit.BufferSize)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "fx.quotes.usdinr", cfg.Kafka.Topic)
	assert.Equal(t, "pricebook", cfg.Kafka.GroupID)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "text", cfg.Logger.Format)
	assert.Equal(t, "stdout", cfg.Logger.Output)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, 30*time.Second, cfg.Book.SourceRegistry.RefreshEvery())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("APP_BOOK_INSTRUMENT", "EURUSD")
	t.Setenv("APP_AUDIT_BUFFER_SIZE", "8")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", cfg.Book.Instrument)
	assert.Equal(t, 8, cfg.Audit.BufferSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadWithDefaultsFromEnv(t *testing.T) {
	t.Setenv("APP_BOOK_INSTRUMENT", "USDINR")
	t.Setenv("APP_BOOK_AUTHORIZED_SOURCES", "LP1,LP2")
	t.Setenv("APP_KAFKA_BROKERS", "localhost:9092")

	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "pricebook", cfg.ServiceName)
	assert.Equal(t, []string{"LP1", "LP2"}, cfg.Book.AuthorizedSources)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "quotes", cfg.Kafka.Topic)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			ServiceName: "pricebook",
			Book:        BookConfig{Instrument: "USDINR", AuthorizedSources: []string{"LP1"}},
			Kafka:       KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "quotes"},
			Metrics:     MetricsConfig{Enabled: true, Port: 9090},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "dev", cfg.Environment)

	tests := map[string]func(*Config){
		"missing service name":   func(c *Config) { c.ServiceName = "" },
		"missing instrument":     func(c *Config) { c.Book.Instrument = "" },
		"no authorized sources":  func(c *Config) { c.Book.AuthorizedSources = nil },
		"registry without key":   func(c *Config) { c.Book.SourceRegistry = SourceRegistryConfig{Enabled: true, RefreshInterval: 5} },
		"registry zero interval": func(c *Config) { c.Book.SourceRegistry = SourceRegistryConfig{Enabled: true, Key: "k"} },
		"negative audit buffer":  func(c *Config) { c.Audit.BufferSize = -1 },
		"missing brokers":        func(c *Config) { c.Kafka.Brokers = nil },
		"missing topic":          func(c *Config) { c.Kafka.Topic = "" },
		"bad metrics port":       func(c *Config) { c.Metrics.Port = 70000 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg = valid()
	cfg.Book.AuthorizedSources = nil
	cfg.Book.SourceRegistry = SourceRegistryConfig{Enabled: true, Key: "pricebook:sources", RefreshInterval: 5}
	assert.NoError(t, cfg.Validate())
}
