package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/nibzard/bucketlist-go/internal/app"
	"github.com/nibzard/bucketlist-go/internal/logging"
	"github.com/nibzard/bucketlist-go/internal/metrics"
	"github.com/nibzard/bucketlist-go/internal/ui"
)

// tuiCommand runs the terminal UI. It owns the terminal, so logs go to the
// log file instead of stderr.
func tuiCommand(ctx context.Context, e *env, args []string) error {
	flags := flag.NewFlagSet("bucketlist tui", flag.ContinueOnError)
	flags.SetOutput(e.stderr)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	if !ui.IsTTY(os.Stdout) {
		return errors.New("tui requires a TTY; use ls, add, toggle, edit, rm or clear instead")
	}

	cfg := e.cfg
	logFile, err := logging.OpenFile(cfg.LogFilePath())
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := logging.New(logFile, logging.OptionsFromConfig(cfg.LogLevel, cfg.LogFormat, true, cfg.LogCaller))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var opts []app.Option
	if cfg.MetricsAddr != "" {
		recorder := metrics.New()
		opts = append(opts, app.WithObserver(recorder))
		go func() {
			logger.Info("Serving metrics", "addr", cfg.MetricsAddr)
			if err := recorder.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error("Metrics server stopped", "err", err)
			}
		}()
	}

	ctrl, err := newController(ctx, cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	logger.Info("Starting TUI", "backend", cfg.StorageBackend, "key", cfg.StorageKey)
	return ui.Run(ctx, ctrl, ui.Options{
		Title:       cfg.UI.Title,
		Placeholder: cfg.UI.Placeholder,
	})
}

// logsCommand prints the TUI log file.
func logsCommand(ctx context.Context, e *env, args []string) error {
	flags := flag.NewFlagSet("bucketlist logs", flag.ContinueOnError)
	flags.SetOutput(e.stderr)
	follow := flags.Bool("f", false, "Follow the log (like tail -f)")
	flags.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := flags.Int("n", 0, "Number of lines to show (0 = all)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	path := e.cfg.LogFilePath()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(e.stdout, "No log file found.")
		return nil
	}
	if *follow {
		fmt.Fprintf(e.stderr, "Tailing: %s (Ctrl+C to stop)\n", path)
	}
	return logging.TailLog(ctx, e.stdout, path, *n, *follow)
}
