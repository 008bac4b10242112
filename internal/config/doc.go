// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.bucketlist/bucketlist.toml or OS-specific config directory)
// 3. Project config file (bucketlist.toml or .bucketlist.toml in the working directory)
// 4. A .env file in the working directory (never overrides variables already set)
// 5. Environment variables (BUCKETLIST_*)
// 6. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.bucketlist/bucketlist.toml (preferred)
// - Windows: %APPDATA%\bucketlist\bucketlist.toml
// - macOS: ~/Library/Application Support/bucketlist/bucketlist.toml
// - Linux/BSD: $XDG_CONFIG_HOME/bucketlist/bucketlist.toml or ~/.config/bucketlist/bucketlist.toml
//
// Project-level config locations (overrides user config):
// - ./bucketlist.toml (preferred)
// - ./.bucketlist.toml
package config
