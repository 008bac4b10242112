package kv

import (
	"context"
	"fmt"
	"strings"
)

// Backend names.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Dir      string
	Redis    RedisOptions
	SQLDSN   string
	SQLTable string
}

// Backends returns the supported backend names.
func Backends() []string {
	return []string{BackendFile, BackendMemory, BackendRedis, BackendMySQL, BackendPostgres}
}

// NormalizeBackend lowercases a backend name and maps aliases.
func NormalizeBackend(name string) string {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "":
		return BackendFile
	case "postgresql", "pg", "pgx":
		return BackendPostgres
	case "mariadb":
		return BackendMySQL
	case "mem":
		return BackendMemory
	default:
		return n
	}
}

// Open returns the provider for opts.Backend.
func Open(ctx context.Context, opts Options) (Provider, error) {
	switch backend := NormalizeBackend(opts.Backend); backend {
	case BackendFile:
		return NewFile(opts.Dir)
	case BackendMemory:
		return NewMemory(), nil
	case BackendRedis:
		return NewRedis(ctx, opts.Redis)
	case BackendMySQL, BackendPostgres:
		dialect, err := DialectFor(backend, opts.SQLTable)
		if err != nil {
			return nil, err
		}
		return NewSQL(ctx, dialect, opts.SQLDSN)
	default:
		return nil, fmt.Errorf("kv: unknown backend %q (expected %s)", opts.Backend, strings.Join(Backends(), "|"))
	}
}
