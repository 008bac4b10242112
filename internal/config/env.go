package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const envPrefix = "BUCKETLIST_"

// dotEnvFile is read from the working directory.
const dotEnvFile = ".env"

// loadDotEnv loads .env into the process environment if it exists.
func loadDotEnv() error {
	if _, err := os.Stat(dotEnvFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(dotEnvFile)
}

// loadFromEnv overrides config from BUCKETLIST_* environment variables.
func loadFromEnv(cfg *Config) error {
	str := func(name, field string, target *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
			*target = v
			cfg.setSource(field, SourceEnv)
		}
	}
	boolean := func(name, field string, target *bool) {
		if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
			*target = boolFromString(v)
			cfg.setSource(field, SourceEnv)
		}
	}

	str("STORAGE_BACKEND", "storage_backend", &cfg.StorageBackend)
	str("DATA_DIR", "data_dir", &cfg.DataDir)
	str("STORAGE_KEY", "storage_key", &cfg.StorageKey)
	str("ID_STRATEGY", "id_strategy", &cfg.IDStrategy)
	boolean("STRICT_SCHEMA", "strict_schema", &cfg.StrictSchema)

	str("REDIS_ADDR", "redis.addr", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", "redis.password", &cfg.Redis.Password)
	str("REDIS_PREFIX", "redis.prefix", &cfg.Redis.Prefix)
	if v := os.Getenv(envPrefix + "REDIS_DB"); v != "" {
		db, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", envPrefix, err)
		}
		cfg.Redis.DB = db
		cfg.setSource("redis.db", SourceEnv)
	}

	str("SQL_DSN", "sql.dsn", &cfg.SQL.DSN)
	str("SQL_TABLE", "sql.table", &cfg.SQL.Table)

	str("LOG_LEVEL", "log_level", &cfg.LogLevel)
	str("LOG_FORMAT", "log_format", &cfg.LogFormat)
	boolean("LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	boolean("LOG_CALLER", "log_caller", &cfg.LogCaller)
	str("LOG_DIR", "log_dir", &cfg.LogDir)
	str("LOG_FILE", "log_file", &cfg.LogFile)

	str("METRICS_ADDR", "metrics_addr", &cfg.MetricsAddr)

	str("UI_TITLE", "ui.title", &cfg.UI.Title)
	str("UI_PLACEHOLDER", "ui.placeholder", &cfg.UI.Placeholder)
	return nil
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
