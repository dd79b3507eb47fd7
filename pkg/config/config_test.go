package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
environment: test
server:
  port: 8080
  read_timeout: 10s
extractor:
  strategy: model
perplexity:
  api_key: file-key
  base_url: https://api.perplexity.ai
  model: sonar
  temperature: 0.2
  max_tokens: 100
  timeout: 30s
clickhouse:
  host: localhost
  port: 9000
  database: valupull
  table: valuations
cache:
  enabled: false
  ttl: 10m
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "model", cfg.Extractor.Strategy)
	assert.Equal(t, "sonar", cfg.Perplexity.Model)
	assert.Equal(t, 0.2, cfg.Perplexity.Temperature)
	assert.Equal(t, 100, cfg.Perplexity.MaxTokens)
	assert.Equal(t, "valuations", cfg.ClickHouse.Table)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PERPLEXITY_API_KEY", "env-key")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CLICKHOUSE_HOST", "ch.internal")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_HOST", "redis.internal")

	cfg, err := LoadWithEnv(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Perplexity.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "ch.internal", cfg.ClickHouse.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "redis.internal", cfg.Cache.Host)
}

func TestLoadWithEnvBadPortKeepsFileValue(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	cfg, err := LoadWithEnv(writeConfig(t, baseYAML))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidateMissingAPIKeyForModelStrategy(t *testing.T) {
	yaml := `
environment: test
extractor:
  strategy: model
clickhouse:
  host: localhost
`
	_, err := Load(writeConfig(t, yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "perplexity.api_key")
}

func TestValidatePageStrategyNeedsNoKey(t *testing.T) {
	yaml := `
environment: test
extractor:
  strategy: page
clickhouse:
  host: localhost
`
	cfg, err := Load(writeConfig(t, yaml))
	require.NoError(t, err)
	assert.Equal(t, "page", cfg.Extractor.Strategy)
}

func TestValidateUnknownStrategy(t *testing.T) {
	yaml := `
environment: test
extractor:
  strategy: telepathy
clickhouse:
  host: localhost
`
	_, err := Load(writeConfig(t, yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extractor.strategy")
}

func TestValidateDefaultsStrategy(t *testing.T) {
	yaml := `
environment: test
perplexity:
  api_key: k
clickhouse:
  host: localhost
`
	cfg, err := Load(writeConfig(t, yaml))
	require.NoError(t, err)
	assert.Equal(t, "model", cfg.Extractor.Strategy)
}

func TestValidateSourceEntries(t *testing.T) {
	yaml := `
environment: test
extractor:
  strategy: page
clickhouse:
  host: localhost
sources:
  - name: HSBC Hong Kong
    query_target: ""
`
	_, err := Load(writeConfig(t, yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sources entries")
}
