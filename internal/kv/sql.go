package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DefaultTable is the key/value table used when none is configured.
const DefaultTable = "bucketlist_kv"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Dialect holds the statements for one SQL flavor.
type Dialect struct {
	Name   string
	Driver string
	create string
	get    string
	set    string
}

// MySQLDialect returns the statements for MySQL and MariaDB.
func MySQLDialect(table string) Dialect {
	return Dialect{
		Name:   "mysql",
		Driver: "mysql",
		create: fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (k VARCHAR(255) NOT NULL PRIMARY KEY, v LONGTEXT NOT NULL)", table),
		get:    fmt.Sprintf("SELECT v FROM %s WHERE k = ?", table),
		set:    fmt.Sprintf("INSERT INTO %s (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)", table),
	}
}

// PostgresDialect returns the statements for PostgreSQL (pgx stdlib driver).
func PostgresDialect(table string) Dialect {
	return Dialect{
		Name:   "postgres",
		Driver: "pgx",
		create: fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (k TEXT PRIMARY KEY, v TEXT NOT NULL)", table),
		get:    fmt.Sprintf("SELECT v FROM %s WHERE k = $1", table),
		set:    fmt.Sprintf("INSERT INTO %s (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v", table),
	}
}

// DialectFor returns the dialect for a backend name.
func DialectFor(backend, table string) (Dialect, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return Dialect{}, fmt.Errorf("kv: invalid table name %q", table)
	}
	switch backend {
	case BackendMySQL:
		return MySQLDialect(table), nil
	case BackendPostgres:
		return PostgresDialect(table), nil
	default:
		return Dialect{}, fmt.Errorf("kv: no sql dialect for backend %q", backend)
	}
}

// SQL stores values in a key/value table.
type SQL struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQL opens the database, pings it, and creates the table if missing.
func NewSQL(ctx context.Context, dialect Dialect, dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, errors.New("kv: sql dsn is empty")
	}
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}
	s := &SQL{db: db, dialect: dialect}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQL) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.create); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

// Get reads the value stored under key.
func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set upserts value under key.
func (s *SQL) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.set, key, value)
	return err
}

// Close closes the database handle.
func (s *SQL) Close() error {
	return s.db.Close()
}
