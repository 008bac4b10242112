package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibzard/bucketlist-go/internal/task"
)

// sandbox isolates config discovery and returns the data directory.
func sandbox(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"home", "work", "data"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("HOME", filepath.Join(root, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "xdg"))
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "BUCKETLIST_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
	chdir(t, filepath.Join(root, "work"))
	return filepath.Join(root, "data")
}

type cli struct {
	t       *testing.T
	dataDir string
}

func newCLI(t *testing.T) *cli {
	return &cli{t: t, dataDir: sandbox(t)}
}

// run executes one CLI invocation against the sandboxed file store.
func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"-data-dir", c.dataDir, "-id-strategy", "timestamp", "-log-level", "error"}, args...)
	err := run(context.Background(), full, &stdout, &stderr)
	return stdout.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("%v: %v", args, err)
	}
	return out
}

func (c *cli) list() task.Collection {
	c.t.Helper()
	var col task.Collection
	if err := col.UnmarshalJSON([]byte(c.mustRun("ls", "-json"))); err != nil {
		c.t.Fatalf("decoding ls -json: %v", err)
	}
	return col
}

func TestRun(t *testing.T) {
	sandbox(t)
	ctx := context.Background()

	t.Run("help flag", func(t *testing.T) {
		var out bytes.Buffer
		if err := run(ctx, []string{"-h"}, &out, &bytes.Buffer{}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out.String(), "Usage:") {
			t.Errorf("usage not printed: %q", out.String())
		}
	})

	t.Run("help command", func(t *testing.T) {
		if err := run(ctx, []string{"help"}, &bytes.Buffer{}, &bytes.Buffer{}); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("version", func(t *testing.T) {
		for _, args := range [][]string{{"-v"}, {"-version"}, {"version"}} {
			var out bytes.Buffer
			if err := run(ctx, args, &out, &bytes.Buffer{}); err != nil {
				t.Fatalf("%v: %v", args, err)
			}
			if !strings.Contains(out.String(), "bucketlist version "+Version) {
				t.Errorf("%v: got %q", args, out.String())
			}
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		err := run(ctx, []string{"unknown-command"}, &bytes.Buffer{}, &bytes.Buffer{})
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected unknown command error, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		err := run(ctx, []string{"-backend", "etcd", "ls"}, &bytes.Buffer{}, &bytes.Buffer{})
		if err == nil || !strings.Contains(err.Error(), "storage_backend") {
			t.Errorf("expected config error, got %v", err)
		}
	})

	t.Run("tui without terminal", func(t *testing.T) {
		err := run(ctx, []string{"-backend", "memory", "tui"}, &bytes.Buffer{}, &bytes.Buffer{})
		if err == nil || !strings.Contains(err.Error(), "TTY") {
			t.Errorf("expected TTY error, got %v", err)
		}
	})
}

func TestTaskLifecycle(t *testing.T) {
	c := newCLI(t)

	if out := c.mustRun("ls"); !strings.Contains(out, "Nothing on the list") {
		t.Errorf("ls on empty list: %q", out)
	}

	out := c.mustRun("add", "see", "the", "northern", "lights")
	if !strings.HasPrefix(out, "Added ") {
		t.Fatalf("add output: %q", out)
	}
	id := strings.TrimSpace(strings.TrimPrefix(out, "Added "))
	c.mustRun("add", "learn to sail")

	col := c.list()
	if col.Len() != 2 {
		t.Fatalf("got %d tasks, want 2", col.Len())
	}
	first, ok := col.Get(id)
	if !ok || first.Text != "see the northern lights" || first.Completed {
		t.Fatalf("got %+v", first)
	}

	lines := strings.Split(strings.TrimSpace(c.mustRun("ls")), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "learn to sail") {
		t.Errorf("ls not newest first: %q", lines)
	}

	if out := c.mustRun("toggle", id); !strings.HasPrefix(out, "[x] see the northern lights") {
		t.Errorf("toggle output: %q", out)
	}
	if done := c.mustRun("ls", "-completed"); !strings.Contains(done, "northern lights") || strings.Contains(done, "sail") {
		t.Errorf("ls -completed: %q", done)
	}
	if pending := c.mustRun("ls", "-pending"); strings.Contains(pending, "northern lights") {
		t.Errorf("ls -pending: %q", pending)
	}

	c.mustRun("edit", id, "see the aurora")
	if got, _ := c.list().Get(id); got.Text != "see the aurora" || !got.Completed {
		t.Errorf("after edit: %+v", got)
	}

	if out := c.mustRun("clear"); !strings.Contains(out, "Deleted 1 completed task") {
		t.Errorf("clear output: %q", out)
	}
	col = c.list()
	if col.Len() != 1 || col.Has(id) {
		t.Fatalf("after clear: %v", col.IDs())
	}

	remaining := col.IDs()[0]
	c.mustRun("rm", remaining)
	if n := c.list().Len(); n != 0 {
		t.Errorf("got %d tasks after rm, want 0", n)
	}

	data, err := os.ReadFile(filepath.Join(c.dataDir, "tasks.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Errorf("stored blob %q, want {}", data)
	}
}

func TestAddRejectsBlankText(t *testing.T) {
	c := newCLI(t)
	if _, err := c.run("add", "   "); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected empty text error, got %v", err)
	}
	if _, err := c.run("add"); err == nil {
		t.Error("expected usage error")
	}
}

func TestToggleUnknownID(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("toggle", "nope")
	var nf *task.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

func TestRmUnknownID(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("rm", "nope")
	if !strings.Contains(out, "No task nope") {
		t.Errorf("got %q", out)
	}
}

func TestLsJSONKeepsStoredOrder(t *testing.T) {
	c := newCLI(t)
	for _, text := range []string{"a", "b", "c"} {
		c.mustRun("add", text)
	}

	var raw map[string]task.Task
	out := c.mustRun("ls", "-json")
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(raw) != 3 {
		t.Fatalf("got %d entries", len(raw))
	}
	var texts []string
	for _, tk := range c.list().Tasks() {
		texts = append(texts, tk.Text)
	}
	if strings.Join(texts, "") != "abc" {
		t.Errorf("got order %v", texts)
	}

	if _, err := c.run("ls", "-completed", "-pending"); err == nil {
		t.Error("expected error for conflicting filters")
	}
}

func TestCorruptBlobIsReported(t *testing.T) {
	c := newCLI(t)
	if err := os.WriteFile(filepath.Join(c.dataDir, "tasks.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := c.run("ls")
	var parseErr *task.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %v, want ParseError", err)
	}

	out, err := c.run("doctor")
	if err == nil {
		t.Error("doctor passed on a corrupt blob")
	}
	if !strings.Contains(out, "❌ Parse") {
		t.Errorf("doctor output: %q", out)
	}
}

func TestResolveID(t *testing.T) {
	col := task.NewCollection(
		task.Task{ID: "0190a1", Text: "a"},
		task.Task{ID: "0190b2", Text: "b"},
		task.Task{ID: "77", Text: "c"},
	)
	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{arg: "77", want: "77"},
		{arg: "0190a", want: "0190a1"},
		{arg: "0190", wantErr: true},
		{arg: "zz", want: "zz"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := resolveID(col, tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected ambiguity error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDoctor(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "ride a camel")

	out := c.mustRun("doctor")
	for _, want := range []string{"✅ Tasks: 1 (0 completed)", "✅ Schema: valid", "All checks passed"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCommand(t *testing.T) {
	c := newCLI(t)

	if out := c.mustRun("config"); !strings.Contains(out, "storage_backend") {
		t.Errorf("example config missing keys: %q", out)
	}

	t.Setenv("BUCKETLIST_SQL_DSN", "postgres://u:secret@db/lists")
	out := c.mustRun("config", "-show")
	if strings.Contains(out, "secret") {
		t.Error("dsn printed unmasked")
	}
	for _, want := range []string{"# flag", "# environment", "# default"} {
		if !strings.Contains(out, want) {
			t.Errorf("config -show missing %q:\n%s", want, out)
		}
	}
}

func TestLogsCommand(t *testing.T) {
	c := newCLI(t)
	logFile := filepath.Join(t.TempDir(), "tui.log")

	out := c.mustRun("-log-file", logFile, "logs")
	if !strings.Contains(out, "No log file found") {
		t.Errorf("got %q", out)
	}

	if err := os.WriteFile(logFile, []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if out := c.mustRun("-log-file", logFile, "logs", "-n", "2"); out != "two\nthree\n" {
		t.Errorf("got %q", out)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
