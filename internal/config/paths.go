package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// expandPath expands the home directory and environment variables in p.
// It supports ~/ or ~\ prefixes and %VAR% expansion on Windows.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := expandEnv(p)
	if expanded == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return expanded
	}
	if strings.HasPrefix(expanded, "~/") || (runtime.GOOS == "windows" && strings.HasPrefix(expanded, `~\`)) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, expanded[2:])
		}
	}
	return expanded
}

func expandEnv(p string) string {
	expanded := os.ExpandEnv(p)
	if runtime.GOOS != "windows" || !strings.Contains(expanded, "%") {
		return expanded
	}
	return expandWindowsEnv(expanded)
}

// expandWindowsEnv replaces %VAR% references, leaving unknown ones intact.
func expandWindowsEnv(p string) string {
	var b strings.Builder
	for i := 0; i < len(p); {
		if p[i] != '%' {
			b.WriteByte(p[i])
			i++
			continue
		}
		end := strings.IndexByte(p[i+1:], '%')
		if end <= 0 {
			b.WriteByte('%')
			i++
			continue
		}
		key := p[i+1 : i+1+end]
		if val, ok := os.LookupEnv(key); ok {
			b.WriteString(val)
		} else {
			b.WriteString("%" + key + "%")
		}
		i += end + 2
	}
	return b.String()
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
