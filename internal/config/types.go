package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// Default values.
const (
	DefaultStorageBackend = "file"
	DefaultDataDir        = "~/.bucketlist/data"
	DefaultStorageKey     = "tasks"
	DefaultIDStrategy     = "uuid"
	DefaultLogDir         = "~/.bucketlist"
	DefaultLogFileName    = "bucketlist.log"
	DefaultRedisPrefix    = "bucketlist:"
	DefaultSQLTable       = "bucketlist_kv"
	DefaultTitle          = "Bucket List"
	DefaultPlaceholder    = "+ Add item"
)

// Config holds the full configuration for bucketlist.
type Config struct {
	// Storage
	StorageBackend string      `toml:"storage_backend"`
	DataDir        string      `toml:"data_dir"`
	StorageKey     string      `toml:"storage_key"`
	IDStrategy     string      `toml:"id_strategy"`
	StrictSchema   bool        `toml:"strict_schema"`
	Redis          RedisConfig `toml:"redis"`
	SQL            SQLConfig   `toml:"sql"`

	// Logging
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
	LogDir        string `toml:"log_dir"`
	LogFile       string `toml:"log_file"`

	// MetricsAddr enables the Prometheus endpoint when non-empty, e.g. ":9090".
	MetricsAddr string `toml:"metrics_addr"`

	UI UIConfig `toml:"ui"`

	// Sources maps each field name (as written in TOML, dotted for tables)
	// to where its value came from.
	Sources map[string]ConfigSource `toml:"-"`
	// Files lists the config files that were loaded, lowest priority first.
	Files []string `toml:"-"`
}

// RedisConfig configures the redis storage backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// SQLConfig configures the mysql and postgres storage backends.
type SQLConfig struct {
	DSN   string `toml:"dsn"`
	Table string `toml:"table"`
}

// UIConfig holds terminal UI text.
type UIConfig struct {
	Title       string `toml:"title"`
	Placeholder string `toml:"placeholder"`
}

// LogFilePath returns the file the TUI logs to.
func (c *Config) LogFilePath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return joinPath(c.LogDir, DefaultLogFileName)
}

// Source returns where field got its value.
func (c *Config) Source(field string) ConfigSource {
	if s, ok := c.Sources[field]; ok {
		return s
	}
	return SourceDefault
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return []string{
		"storage_backend",
		"data_dir",
		"storage_key",
		"id_strategy",
		"strict_schema",
		"redis.addr",
		"redis.password",
		"redis.db",
		"redis.prefix",
		"sql.dsn",
		"sql.table",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"log_dir",
		"log_file",
		"metrics_addr",
		"ui.title",
		"ui.placeholder",
	}
}

func (c *Config) setSource(field string, source ConfigSource) {
	if c.Sources == nil {
		c.Sources = make(map[string]ConfigSource)
	}
	c.Sources[field] = source
}
