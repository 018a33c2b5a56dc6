package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Blob store backends.
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds all app configuration
type Config struct {
	Env string `yaml:"env"`

	// Server
	HTTPPort string `yaml:"http_port"`

	// Analytics store
	MaxTransactionsToStore int    `yaml:"max_transactions_to_store"`
	PersistenceEnabled     bool   `yaml:"persistence_enabled"`
	BlobBackend            string `yaml:"blob_backend"`

	// Redis
	RedisAddr      string `yaml:"redis_addr"`
	RedisPassword  string `yaml:"redis_password"`
	RedisDB        int    `yaml:"redis_db"`
	RedisKeyPrefix string `yaml:"redis_key_prefix"`

	// SQLite
	SQLitePath string `yaml:"sqlite_path"`

	// ClickHouse transaction archive
	ArchiveEnabled     bool   `yaml:"archive_enabled"`
	ClickhouseAddr     string `yaml:"clickhouse_addr"`
	ClickhouseUsername string `yaml:"clickhouse_username"`
	ClickhousePassword string `yaml:"clickhouse_password"`
	ClickhouseTimeout  int    `yaml:"clickhouse_timeout"` // seconds

	// Kafka
	KafkaEnabled       bool     `yaml:"kafka_enabled"`
	KafkaBrokers       []string `yaml:"kafka_brokers"`
	KafkaTopic         string   `yaml:"kafka_topic"`
	KafkaConsumerGroup string   `yaml:"kafka_consumer_group"`
	KafkaBatchSize     int      `yaml:"kafka_batch_size"`
	KafkaBatchTimeout  int      `yaml:"kafka_batch_timeout"` // milliseconds

	// App settings
	EventBufferSize    int    `yaml:"event_buffer_size"`
	DedupResetSchedule string `yaml:"dedup_reset_schedule"`
	DemoEvents         bool   `yaml:"demo_events"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Env:      "local",
		HTTPPort: "8080",

		MaxTransactionsToStore: 1000,
		PersistenceEnabled:     true,
		BlobBackend:            BackendRedis,

		RedisAddr:      "localhost:6379",
		RedisKeyPrefix: "marketplace:",

		SQLitePath: "data/analytics.db",

		ClickhouseAddr:    "localhost:9000",
		ClickhouseTimeout: 10,

		KafkaBrokers:       []string{"localhost:9092"},
		KafkaTopic:         "marketplace-events",
		KafkaConsumerGroup: "nftstat-group",
		KafkaBatchSize:     500,
		KafkaBatchTimeout:  3000,

		EventBufferSize:    1000,
		DedupResetSchedule: "@every 10m",
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// (CONFIG_FILE) and environment variables, in increasing precedence.
// An optional .env file (ENV_FILE, default ".env") is loaded into the environment first.
func LoadConfig() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("No %s file loaded: %v", envFile, err)
	}

	cfg := Default()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides every field whose variable is set.
func (c *Config) applyEnv() {
	c.Env = getEnv("ENV", c.Env)
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)

	c.MaxTransactionsToStore = getEnvAsInt("MAX_TRANSACTIONS_TO_STORE", c.MaxTransactionsToStore)
	c.PersistenceEnabled = getEnvAsBool("PERSISTENCE_ENABLED", c.PersistenceEnabled)
	c.BlobBackend = getEnv("BLOB_BACKEND", c.BlobBackend)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvAsInt("REDIS_DB", c.RedisDB)
	c.RedisKeyPrefix = getEnv("REDIS_KEY_PREFIX", c.RedisKeyPrefix)

	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)

	c.ArchiveEnabled = getEnvAsBool("ARCHIVE_ENABLED", c.ArchiveEnabled)
	c.ClickhouseAddr = getEnv("CLICKHOUSE_ADDR", c.ClickhouseAddr)
	c.ClickhouseUsername = getEnv("CLICKHOUSE_USERNAME", c.ClickhouseUsername)
	c.ClickhousePassword = getEnv("CLICKHOUSE_PASSWORD", c.ClickhousePassword)
	c.ClickhouseTimeout = getEnvAsInt("CLICKHOUSE_TIMEOUT", c.ClickhouseTimeout)

	c.KafkaEnabled = getEnvAsBool("KAFKA_ENABLED", c.KafkaEnabled)
	c.KafkaBrokers = getEnvAsSlice("KAFKA_BROKERS", c.KafkaBrokers, ",")
	c.KafkaTopic = getEnv("KAFKA_TOPIC", c.KafkaTopic)
	c.KafkaConsumerGroup = getEnv("KAFKA_CONSUMER_GROUP", c.KafkaConsumerGroup)
	c.KafkaBatchSize = getEnvAsInt("KAFKA_BATCH_SIZE", c.KafkaBatchSize)
	c.KafkaBatchTimeout = getEnvAsInt("KAFKA_BATCH_TIMEOUT", c.KafkaBatchTimeout)

	c.EventBufferSize = getEnvAsInt("EVENT_BUFFER_SIZE", c.EventBufferSize)
	c.DedupResetSchedule = getEnv("DEDUP_RESET_SCHEDULE", c.DedupResetSchedule)
	c.DemoEvents = getEnvAsBool("DEMO_EVENTS", c.DemoEvents)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case "local", "dev", "prod":
	default:
		errs = append(errs, fmt.Errorf("env must be local, dev or prod, got %q", c.Env))
	}
	if c.MaxTransactionsToStore <= 0 {
		errs = append(errs, fmt.Errorf("max_transactions_to_store must be positive, got %d", c.MaxTransactionsToStore))
	}
	switch c.BlobBackend {
	case BackendRedis, BackendSQLite, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("blob_backend must be redis, sqlite or memory, got %q", c.BlobBackend))
	}
	if c.BlobBackend == BackendSQLite && c.SQLitePath == "" {
		errs = append(errs, errors.New("sqlite_path is required for the sqlite backend"))
	}
	if c.EventBufferSize < 0 {
		errs = append(errs, fmt.Errorf("event_buffer_size must not be negative, got %d", c.EventBufferSize))
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("kafka_brokers is required when kafka is enabled"))
	}
	if c.DedupResetSchedule == "" {
		errs = append(errs, errors.New("dedup_reset_schedule is required"))
	}

	return errors.Join(errs...)
}

// Helper functions for parsing environment variables
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsSlice(key string, defaultVal []string, sep string) []string {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultVal
	}
	parts := strings.Split(valStr, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
