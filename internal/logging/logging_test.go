package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"ERROR", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		input string
		want  log.Formatter
	}{
		{"json", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"text", log.TextFormatter},
		{"", log.TextFormatter},
	}
	for _, tt := range tests {
		if got := ParseFormatter(tt.input); got != tt.want {
			t.Errorf("ParseFormatter(%q): got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, OptionsFromConfig("debug", "json", false, false))

	logger.Debug("Intent applied", "intent", "add")
	out := buf.String()
	for _, want := range []string{`"msg":"Intent applied"`, `"intent":"add"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %s", out, want)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, OptionsFromConfig("warn", "text", false, false))

	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("info message logged at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn message missing")
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bucketlist.log")

	for i := 0; i < 2; i++ {
		f, err := OpenFile(path)
		if err != nil {
			t.Fatalf("OpenFile: %v", err)
		}
		if _, err := f.WriteString("line\n"); err != nil {
			t.Fatal(err)
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "line\nline\n" {
		t.Errorf("expected appended content, got %q", data)
	}

	if _, err := OpenFile(" "); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestTailLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bucketlist.log")
	var content strings.Builder
	for i := 1; i <= 10; i++ {
		content.WriteString("line ")
		content.WriteString(string(rune('0' + i%10)))
		content.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(content.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"last three", 3, "line 8\nline 9\nline 0\n"},
		{"all", 0, content.String()},
		{"more than file", 50, content.String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TailLog(context.Background(), &buf, path, tt.n, false); err != nil {
				t.Fatalf("TailLog: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestTailLogNoTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bucketlist.log")
	if err := os.WriteFile(path, []byte("a\nb\nc"), 0o644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := TailLog(context.Background(), &buf, path, 2, false); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "b\nc" {
		t.Errorf("got %q, want %q", buf.String(), "b\nc")
	}
}

func TestTailLogMissingFile(t *testing.T) {
	err := TailLog(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.log"), 5, false)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

type syncBuffer struct {
	ch chan string
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	if len(p) > 0 {
		s.ch <- string(p)
	}
	return len(p), nil
}

func TestTailLogFollow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bucketlist.log")
	if err := os.WriteFile(path, []byte("first\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{ch: make(chan string, 16)}
	done := make(chan error, 1)
	go func() { done <- TailLog(ctx, out, path, 0, true) }()

	if got := <-out.ch; got != "first\n" {
		t.Fatalf("got %q, want %q", got, "first\n")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("second\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	select {
	case got := <-out.ch:
		if got != "second\n" {
			t.Errorf("got %q, want %q", got, "second\n")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("appended line not followed")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("TailLog: %v", err)
	}
}
