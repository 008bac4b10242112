package config

import (
	"flag"
)

// flagFields maps flag names to config field names.
var flagFields = map[string]string{
	"backend":        "storage_backend",
	"data-dir":       "data_dir",
	"key":            "storage_key",
	"id-strategy":    "id_strategy",
	"strict-schema":  "strict_schema",
	"redis-addr":     "redis.addr",
	"redis-db":       "redis.db",
	"sql-dsn":        "sql.dsn",
	"sql-table":      "sql.table",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
	"log-dir":        "log_dir",
	"log-file":       "log_file",
	"metrics-addr":   "metrics_addr",
}

// parseFlags defines the global flags on fs and parses args.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet(appName, flag.ContinueOnError)
	}

	// Storage
	fs.StringVar(&cfg.StorageBackend, "backend", cfg.StorageBackend, "Storage backend: file|memory|redis|mysql|postgres")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for the file backend")
	fs.StringVar(&cfg.StorageKey, "key", cfg.StorageKey, "Storage key holding the task list")
	fs.StringVar(&cfg.IDStrategy, "id-strategy", cfg.IDStrategy, "Task id strategy: uuid|timestamp")
	fs.BoolVar(&cfg.StrictSchema, "strict-schema", cfg.StrictSchema, "Validate stored tasks against the JSON schema on load")
	fs.StringVar(&cfg.Redis.Addr, "redis-addr", cfg.Redis.Addr, "Redis address (host:port)")
	fs.IntVar(&cfg.Redis.DB, "redis-db", cfg.Redis.DB, "Redis database number")
	fs.StringVar(&cfg.SQL.DSN, "sql-dsn", cfg.SQL.DSN, "MySQL or PostgreSQL DSN")
	fs.StringVar(&cfg.SQL.Table, "sql-table", cfg.SQL.Table, "Key/value table name")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error|fatal")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text|json|logfmt")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Include caller file:line in logs")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file for the TUI (default <log-dir>/bucketlist.log)")

	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok {
			cfg.setSource(field, SourceFlag)
		}
	})
	return nil
}
