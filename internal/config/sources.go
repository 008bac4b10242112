package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName        = "bucketlist"
	configFileName = "bucketlist.toml"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	for _, name := range []string{configFileName, "." + configFileName} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// ~/.bucketlist/bucketlist.toml wins over the OS config directory.
func findUserConfigFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, "."+appName, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		path := filepath.Join(cfgDir, appName, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// osUserConfigDir returns the OS-specific user config directory, or "".
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return os.Getenv("APPDATA")
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}
