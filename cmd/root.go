// Package cmd implements the CLI command structure for bucketlist.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/bucketlist-go/internal/app"
	"github.com/nibzard/bucketlist-go/internal/config"
	"github.com/nibzard/bucketlist-go/internal/kv"
	"github.com/nibzard/bucketlist-go/internal/logging"
	"github.com/nibzard/bucketlist-go/internal/task"
)

// Version is set via ldflags at build time.
var Version = "dev"

// env carries what every subcommand needs.
type env struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
}

// Run executes the bucketlist CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("bucketlist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	e := &env{
		cfg:    cfg,
		stdout: stdout,
		stderr: stderr,
		logger: logging.New(stderr, logging.OptionsFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)),
	}

	// If no args, open the terminal UI
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, e, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, e, remainingArgs)
	case "add":
		return addCommand(ctx, e, remainingArgs)
	case "toggle", "done":
		return toggleCommand(ctx, e, remainingArgs)
	case "edit":
		return editCommand(ctx, e, remainingArgs)
	case "rm", "delete":
		return rmCommand(ctx, e, remainingArgs)
	case "clear":
		return clearCommand(ctx, e, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, e, remainingArgs)
	case "config":
		return configCommand(e, remainingArgs)
	case "logs":
		return logsCommand(ctx, e, remainingArgs)
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// kvOptions maps the storage config onto provider options.
func kvOptions(cfg *config.Config) kv.Options {
	return kv.Options{
		Backend: cfg.StorageBackend,
		Dir:     cfg.DataDir,
		Redis: kv.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		},
		SQLDSN:   cfg.SQL.DSN,
		SQLTable: cfg.SQL.Table,
	}
}

// openStore opens the configured provider and wraps it in a task store.
func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*task.Store, error) {
	provider, err := kv.Open(ctx, kvOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.StorageBackend, err)
	}
	return task.NewStore(provider,
		task.WithKey(cfg.StorageKey),
		task.WithLogger(logger),
		task.WithStrictSchema(cfg.StrictSchema),
	), nil
}

// newController builds a NotReady controller over the configured storage.
func newController(ctx context.Context, cfg *config.Config, logger *log.Logger, opts ...app.Option) (*app.Controller, error) {
	ids, err := task.NewIDSource(cfg.IDStrategy)
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	opts = append([]app.Option{app.WithIDSource(ids), app.WithLogger(logger)}, opts...)
	return app.New(store, opts...), nil
}

// startController builds a controller and loads the persisted tasks.
func startController(ctx context.Context, e *env) (*app.Controller, error) {
	ctrl, err := newController(ctx, e.cfg, e.logger)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Start(ctx); err != nil {
		_ = ctrl.Close()
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	return ctrl, nil
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "bucketlist version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Bucket List - things to do before you kick the bucket")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  bucketlist [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                 Launch the terminal UI (default command)")
	fmt.Fprintln(w, "  ls                  List tasks, newest first")
	fmt.Fprintln(w, "  add <text>          Add a task")
	fmt.Fprintln(w, "  toggle <id>         Mark a task done or not done (alias: done)")
	fmt.Fprintln(w, "  edit <id> <text>    Change the text of a task")
	fmt.Fprintln(w, "  rm <id>             Delete a task")
	fmt.Fprintln(w, "  clear               Delete all completed tasks")
	fmt.Fprintln(w, "  doctor              Check config, storage and stored tasks")
	fmt.Fprintln(w, "  config              Print an example config file")
	fmt.Fprintln(w, "  logs                Show the terminal UI log")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help                Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ids may be shortened to any unique prefix.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -completed    Only completed tasks")
	fmt.Fprintln(w, "  -pending      Only tasks not yet completed")
	fmt.Fprintln(w, "  -json         Print the tasks as a JSON object keyed by id")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config Options:")
	fmt.Fprintln(w, "  -show         Print the effective configuration and where each value came from")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logs Options:")
	fmt.Fprintln(w, "  -f, -follow   Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int        Number of lines to show (0 = all)")
}

// joinArgs joins free-form text arguments.
func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
