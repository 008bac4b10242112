package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 10 * time.Millisecond

// File stores each key as <dir>/<key>.json.
//
// Writes go to a temporary file in the same directory, are synced, and are
// renamed over the target, so a reader never observes a partial value. A
// <key>.json.lock file guards against other processes writing concurrently.
type File struct {
	dir string

	mu     sync.Mutex
	closed bool
}

// NewFile returns a File provider rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("kv: data dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &File{dir: dir}, nil
}

// Dir returns the directory values are stored in.
func (f *File) Dir() string {
	return f.dir
}

// Path returns the file a key is stored in.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+".json")
}

// Get reads the value stored under key.
func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := f.check(ctx); err != nil {
		return "", false, err
	}
	path := f.Path(key)

	lock := flock.New(path + ".lock")
	locked, err := lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", false, fmt.Errorf("lock %s: %w", path, err)
	}
	if locked {
		defer func() { _ = lock.Unlock() }()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), true, nil
}

// Set replaces the value stored under key.
func (f *File) Set(ctx context.Context, key, value string) error {
	if err := f.check(ctx); err != nil {
		return err
	}
	path := f.Path(key)

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", path)
	}
	defer func() { _ = lock.Unlock() }()

	if err := writeFileAtomic(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Close marks the provider closed.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *File) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	// Some platforms refuse to fsync a directory; the rename already
	// happened, so that is not a write failure.
	_ = d.Sync()
	return nil
}

// sanitizeKey maps a key to a safe file name.
func sanitizeKey(key string) string {
	if strings.TrimSpace(key) == "" {
		return "_"
	}
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			b.WriteByte('_')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
