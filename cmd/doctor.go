package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/bucketlist-go/internal/logging"
	"github.com/nibzard/bucketlist-go/internal/task"
)

// doctorCommand checks config, storage reachability, the stored blob and the
// log directory.
func doctorCommand(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("bucketlist doctor", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := e.stdout
	cfg := e.cfg
	fmt.Fprintln(w, "Bucket List Doctor")
	fmt.Fprintln(w, "==================")
	fmt.Fprintln(w)

	allOK := true

	// Config
	fmt.Fprintln(w, "Config:")
	if len(cfg.Files) == 0 {
		fmt.Fprintln(w, "  ✅ Files: none (built-in defaults)")
	}
	for _, f := range cfg.Files {
		fmt.Fprintf(w, "  ✅ File: %s\n", f)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(w, "  ❌ Invalid: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintf(w, "  ✅ Backend: %s\n", cfg.StorageBackend)
		fmt.Fprintf(w, "  ✅ Key: %s\n", cfg.StorageKey)
		fmt.Fprintf(w, "  ✅ Id strategy: %s\n", cfg.IDStrategy)
	}
	fmt.Fprintln(w)

	// Storage and stored blob
	fmt.Fprintln(w, "Storage:")
	if !checkStorage(ctx, e) {
		allOK = false
	}
	fmt.Fprintln(w)

	// Log directory
	fmt.Fprintln(w, "Logs:")
	logPath := cfg.LogFilePath()
	if err := checkWritableDir(filepath.Dir(logPath)); err != nil {
		fmt.Fprintf(w, "  ❌ %s: %v\n", filepath.Dir(logPath), err)
		allOK = false
	} else {
		fmt.Fprintf(w, "  ✅ %s\n", logPath)
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed. Bucket List may not work correctly.")
	return errors.New("doctor checks failed")
}

func checkStorage(ctx context.Context, e *env) bool {
	w := e.stdout
	store, err := openStore(ctx, e.cfg, logging.Discard())
	if err != nil {
		fmt.Fprintf(w, "  ❌ Open: %v\n", err)
		return false
	}
	defer store.Close()
	fmt.Fprintf(w, "  ✅ Open: %s\n", storageTarget(e))

	raw, ok, err := store.Raw(ctx)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Read: %v\n", err)
		return false
	}
	if !ok {
		fmt.Fprintf(w, "  ✅ Key %q not written yet (empty list)\n", store.Key())
		return true
	}

	tasks, err := store.Load(ctx)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Parse: %v\n", err)
		return false
	}
	fmt.Fprintf(w, "  ✅ Tasks: %d (%d completed)\n", tasks.Len(), tasks.CountCompleted())

	if raw == "" || raw == "null" {
		return true
	}
	result := task.ValidateBlob([]byte(raw))
	if !result.Valid {
		fmt.Fprintln(w, "  ❌ Schema:")
		for _, verr := range result.Errors {
			fmt.Fprintf(w, "       %v\n", verr)
		}
		return false
	}
	fmt.Fprintln(w, "  ✅ Schema: valid")
	return true
}

func storageTarget(e *env) string {
	cfg := e.cfg
	switch cfg.StorageBackend {
	case "file":
		return "file " + cfg.DataDir
	case "redis":
		return "redis " + cfg.Redis.Addr
	case "mysql", "postgres":
		return cfg.StorageBackend + " table " + cfg.SQL.Table
	default:
		return cfg.StorageBackend
	}
}

// checkWritableDir creates dir if needed and probes it with a temp file.
func checkWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
