package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("CONFIG_FILE", "")
	for _, key := range []string{
		"ENV", "HTTP_PORT", "MAX_TRANSACTIONS_TO_STORE", "PERSISTENCE_ENABLED", "BLOB_BACKEND",
		"REDIS_ADDR", "REDIS_KEY_PREFIX", "SQLITE_PATH", "KAFKA_ENABLED", "KAFKA_BROKERS",
		"DEDUP_RESET_SCHEDULE", "DEMO_EVENTS", "EVENT_BUFFER_SIZE",
	} {
		if v, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, v) })
			os.Unsetenv(key)
		}
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.MaxTransactionsToStore)
	assert.True(t, cfg.PersistenceEnabled)
	assert.Equal(t, BackendRedis, cfg.BlobBackend)
	assert.Equal(t, "marketplace:", cfg.RedisKeyPrefix)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "@every 10m", cfg.DedupResetSchedule)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoadConfig_YAMLThenEnv(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_transactions_to_store: 250
blob_backend: sqlite
sqlite_path: /tmp/stats.db
kafka_brokers: [a:9092, b:9092]
http_port: "9000"
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("KAFKA_BROKERS", "c:9092, d:9092")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.MaxTransactionsToStore)
	assert.Equal(t, BackendSQLite, cfg.BlobBackend)
	assert.Equal(t, "/tmp/stats.db", cfg.SQLitePath)
	assert.Equal(t, "9100", cfg.HTTPPort)
	assert.Equal(t, []string{"c:9092", "d:9092"}, cfg.KafkaBrokers)
	// Untouched fields keep their defaults.
	assert.Equal(t, "marketplace-events", cfg.KafkaTopic)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	isolateEnv(t)

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("PERSISTENCE_ENABLED=false\nBLOB_BACKEND=memory\n"), 0o644))
	t.Setenv("ENV_FILE", envFile)
	t.Cleanup(func() {
		os.Unsetenv("PERSISTENCE_ENABLED")
		os.Unsetenv("BLOB_BACKEND")
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.PersistenceEnabled)
	assert.Equal(t, BackendMemory, cfg.BlobBackend)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_transactions_to_store: [oops"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"zero capacity", func(c *Config) { c.MaxTransactionsToStore = 0 }, false},
		{"unknown backend", func(c *Config) { c.BlobBackend = "s3" }, false},
		{"sqlite without path", func(c *Config) { c.BlobBackend = BackendSQLite; c.SQLitePath = "" }, false},
		{"unknown env", func(c *Config) { c.Env = "staging" }, false},
		{"kafka without brokers", func(c *Config) { c.KafkaEnabled = true; c.KafkaBrokers = nil }, false},
		{"no dedup schedule", func(c *Config) { c.DedupResetSchedule = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
