package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends for the key-value store.
const (
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the full process configuration, built once in main and passed
// down explicitly.
type Config struct {
	Server      Server
	Storage     StorageConfig
	Redis       RedisConfig
	Sync        SyncConfig
	Translation TranslationConfig
	Audit       AuditConfig
	Log         LogConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Backend     string
	SQLitePath  string
	PostgresDSN string
	KeyPrefix   string
}

// RedisConfig configures the go-redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SyncConfig configures the remote sync endpoint.
type SyncConfig struct {
	EndpointURL string
	SigningKey  string
	BatchSize   int
	Timeout     time.Duration
}

// TranslationConfig configures the remote translation endpoint.
type TranslationConfig struct {
	EndpointURL string
	APIKey      string
	Concurrency int
	Timeout     time.Duration
}

// AuditConfig configures the optional Kafka audit stream.
type AuditConfig struct {
	KafkaBrokers []string
	Topic        string
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr: envString("FIELDSYNC_ADDR", ":8080"),
		},
		Storage: StorageConfig{
			Backend:     envString("STORAGE_BACKEND", BackendSQLite),
			SQLitePath:  envString("SQLITE_PATH", "data/fieldsync.db"),
			PostgresDSN: os.Getenv("POSTGRES_DSN"),
			KeyPrefix:   envString("KV_KEY_PREFIX", "fieldsync:"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Sync: SyncConfig{
			EndpointURL: os.Getenv("SYNC_ENDPOINT_URL"),
			SigningKey:  os.Getenv("SYNC_SIGNING_KEY"),
			BatchSize:   envInt("SYNC_BATCH_SIZE", 25),
			Timeout:     envDuration("SYNC_TIMEOUT", 15*time.Second),
		},
		Translation: TranslationConfig{
			EndpointURL: envString("TRANSLATE_ENDPOINT_URL", "https://libretranslate.com/translate"),
			APIKey:      os.Getenv("TRANSLATE_API_KEY"),
			Concurrency: envInt("TRANSLATE_CONCURRENCY", 4),
			Timeout:     envDuration("TRANSLATE_TIMEOUT", 10*time.Second),
		},
		Audit: AuditConfig{
			KafkaBrokers: envList("KAFKA_BROKERS"),
			Topic:        envString("AUDIT_TOPIC", "fieldsync.audit"),
		},
		Log: LogConfig{
			Level:      envString("LOG_LEVEL", "info"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  envInt("LOG_MAX_SIZE_MB", 10),
			MaxBackups: envInt("LOG_MAX_BACKUPS", 3),
		},
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
