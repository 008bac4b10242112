package kv

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		backend    string
		table      string
		wantDriver string
		wantTable  string
		wantErr    bool
	}{
		{backend: BackendMySQL, wantDriver: "mysql", wantTable: DefaultTable},
		{backend: BackendPostgres, table: "lists", wantDriver: "pgx", wantTable: "lists"},
		{backend: BackendPostgres, table: "lists; DROP TABLE x", wantErr: true},
		{backend: BackendMySQL, table: "1abc", wantErr: true},
		{backend: BackendRedis, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.backend+"/"+tt.table, func(t *testing.T) {
			d, err := DialectFor(tt.backend, tt.table)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DialectFor: %v", err)
			}
			if d.Driver != tt.wantDriver {
				t.Errorf("Driver = %q, want %q", d.Driver, tt.wantDriver)
			}
			for _, stmt := range []string{d.create, d.get, d.set} {
				if !strings.Contains(stmt, tt.wantTable) {
					t.Errorf("statement %q does not use table %q", stmt, tt.wantTable)
				}
			}
		})
	}
}

func TestDialectPlaceholders(t *testing.T) {
	if d := MySQLDialect("t"); !strings.Contains(d.set, "?") || strings.Contains(d.set, "$1") {
		t.Errorf("mysql set uses wrong placeholders: %q", d.set)
	}
	if d := PostgresDialect("t"); !strings.Contains(d.set, "$2") || strings.Contains(d.set, "?") {
		t.Errorf("postgres set uses wrong placeholders: %q", d.set)
	}
}

func TestSQLProvider(t *testing.T) {
	backends := []struct {
		backend string
		env     string
	}{
		{backend: BackendMySQL, env: "BUCKETLIST_TEST_MYSQL_DSN"},
		{backend: BackendPostgres, env: "BUCKETLIST_TEST_POSTGRES_DSN"},
	}
	for _, b := range backends {
		t.Run(b.backend, func(t *testing.T) {
			dsn := os.Getenv(b.env)
			if dsn == "" {
				t.Skipf("%s not set", b.env)
			}
			table := fmt.Sprintf("bucketlist_test_%d", time.Now().UnixNano())
			dialect, err := DialectFor(b.backend, table)
			if err != nil {
				t.Fatal(err)
			}
			ctx := context.Background()
			s, err := NewSQL(ctx, dialect, dsn)
			if err != nil {
				t.Fatalf("NewSQL: %v", err)
			}
			t.Cleanup(func() {
				_, _ = s.db.ExecContext(context.Background(), "DROP TABLE "+table)
				_ = s.Close()
			})

			exerciseProvider(t, s)
		})
	}
}
