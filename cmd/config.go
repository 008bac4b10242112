package cmd

import (
	"flag"
	"fmt"
	"strings"

	"github.com/nibzard/bucketlist-go/internal/config"
)

// configCommand prints an example config file, or with -show the effective
// configuration.
func configCommand(e *env, args []string) error {
	fs := flag.NewFlagSet("bucketlist config", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	show := fs.Bool("show", false, "Print the effective configuration and where each value came from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if !*show {
		fmt.Fprint(e.stdout, config.ExampleConfig())
		return nil
	}

	values := effectiveValues(e.cfg)
	width := 0
	for _, field := range config.Fields() {
		width = max(width, len(field))
	}
	for _, field := range config.Fields() {
		fmt.Fprintf(e.stdout, "%-*s = %-30s # %s\n", width, field, values[field], e.cfg.Source(field))
	}
	if len(e.cfg.Files) > 0 {
		fmt.Fprintf(e.stdout, "\n# files: %s\n", strings.Join(e.cfg.Files, ", "))
	}
	return nil
}

func effectiveValues(cfg *config.Config) map[string]string {
	return map[string]string{
		"storage_backend": quote(cfg.StorageBackend),
		"data_dir":        quote(cfg.DataDir),
		"storage_key":     quote(cfg.StorageKey),
		"id_strategy":     quote(cfg.IDStrategy),
		"strict_schema":   fmt.Sprint(cfg.StrictSchema),
		"redis.addr":      quote(cfg.Redis.Addr),
		"redis.password":  quote(mask(cfg.Redis.Password)),
		"redis.db":        fmt.Sprint(cfg.Redis.DB),
		"redis.prefix":    quote(cfg.Redis.Prefix),
		"sql.dsn":         quote(mask(cfg.SQL.DSN)),
		"sql.table":       quote(cfg.SQL.Table),
		"log_level":       quote(cfg.LogLevel),
		"log_format":      quote(cfg.LogFormat),
		"log_timestamps":  fmt.Sprint(cfg.LogTimestamps),
		"log_caller":      fmt.Sprint(cfg.LogCaller),
		"log_dir":         quote(cfg.LogDir),
		"log_file":        quote(cfg.LogFile),
		"metrics_addr":    quote(cfg.MetricsAddr),
		"ui.title":        quote(cfg.UI.Title),
		"ui.placeholder":  quote(cfg.UI.Placeholder),
	}
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// mask hides secrets while showing that one is set.
func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
