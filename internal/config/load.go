package config

import (
	"errors"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	storageBackends = []string{"file", "memory", "redis", "mysql", "postgres"}
	idStrategies    = []string{"uuid", "timestamp"}
	logLevels       = []string{"debug", "info", "warn", "error", "fatal"}
	logFormats      = []string{"text", "json", "logfmt"}
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.bucketlist/bucketlist.toml or OS-specific config dir)
// 3. Project config file (bucketlist.toml or .bucketlist.toml in current directory)
// 4. .env file in the current directory
// 5. Environment variables
// 6. CLI flags
//
// Flags are defined on fs; fs.Args() holds the remaining arguments afterwards.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	// 2. Try to load from user config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	// 4. .env never overrides variables that are already set
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	// 5. Override from environment
	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	// 6. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 7. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	cfg.StorageBackend = DefaultStorageBackend
	cfg.DataDir = DefaultDataDir
	cfg.StorageKey = DefaultStorageKey
	cfg.IDStrategy = DefaultIDStrategy
	cfg.Redis.Prefix = DefaultRedisPrefix
	cfg.SQL.Table = DefaultSQLTable
	cfg.LogLevel = "info"
	cfg.LogFormat = "text"
	cfg.LogDir = DefaultLogDir
	cfg.UI.Title = DefaultTitle
	cfg.UI.Placeholder = DefaultPlaceholder
}

// loadConfigFile decodes a TOML file over cfg. Keys absent from the file
// keep their current values.
func loadConfigFile(cfg *Config, path string, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	known := Fields()
	for _, key := range md.Keys() {
		if name := key.String(); slices.Contains(known, name) {
			cfg.setSource(name, source)
		}
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

// finalizeConfig normalizes values, expands paths and validates.
func finalizeConfig(cfg *Config) error {
	cfg.StorageBackend = normalizeBackend(cfg.StorageBackend)
	cfg.IDStrategy = strings.ToLower(strings.TrimSpace(cfg.IDStrategy))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.LogDir = expandPath(cfg.LogDir)
	cfg.LogFile = expandPath(cfg.LogFile)

	return cfg.Validate()
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	check := func(field, value string, allowed []string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%s: %q is not one of %s", field, value, strings.Join(allowed, "|")))
		}
	}

	check("storage_backend", c.StorageBackend, storageBackends)
	check("id_strategy", c.IDStrategy, idStrategies)
	check("log_level", c.LogLevel, logLevels)
	check("log_format", c.LogFormat, logFormats)

	if strings.TrimSpace(c.StorageKey) == "" {
		errs = append(errs, errors.New("storage_key: must not be empty"))
	}
	switch c.StorageBackend {
	case "file":
		if strings.TrimSpace(c.DataDir) == "" {
			errs = append(errs, errors.New("data_dir: required for the file backend"))
		}
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr: required for the redis backend"))
		}
		if c.Redis.DB < 0 {
			errs = append(errs, fmt.Errorf("redis.db: %d is negative", c.Redis.DB))
		}
	case "mysql", "postgres":
		if c.SQL.DSN == "" {
			errs = append(errs, fmt.Errorf("sql.dsn: required for the %s backend", c.StorageBackend))
		}
	}
	return errors.Join(errs...)
}

// normalizeBackend lowercases a backend name and maps common aliases.
func normalizeBackend(name string) string {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "":
		return DefaultStorageBackend
	case "postgresql", "pg", "pgx":
		return "postgres"
	case "mariadb":
		return "mysql"
	case "mem":
		return "memory"
	default:
		return n
	}
}
