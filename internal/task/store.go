package task

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/bucketlist-go/internal/kv"
)

// DefaultKey is the storage key the task blob lives under.
const DefaultKey = "tasks"

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) StoreOption {
	return func(s *Store) {
		if strings.TrimSpace(key) != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(logger *log.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStrictSchema makes Load reject blobs that decode but violate the task
// schema.
func WithStrictSchema(enabled bool) StoreOption {
	return func(s *Store) {
		s.strict = enabled
	}
}

// Store is the single source of truth for tasks. It reads and writes the
// whole collection through a kv.Provider and mirrors the last successfully
// loaded or saved collection in memory.
type Store struct {
	provider kv.Provider
	key      string
	logger   *log.Logger
	strict   bool

	mu      sync.RWMutex
	current Collection
}

// NewStore returns a Store persisting through provider.
func NewStore(provider kv.Provider, opts ...StoreOption) *Store {
	s := &Store{
		provider: provider,
		key:      DefaultKey,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Load reads the persisted collection and replaces the in-memory mirror with
// it. A missing key loads as an empty collection.
func (s *Store) Load(ctx context.Context) (Collection, error) {
	raw, ok, err := s.provider.Get(ctx, s.key)
	if err != nil {
		return Collection{}, &StorageReadError{Key: s.key, Err: err}
	}

	var c Collection
	if ok {
		c, err = s.decode(raw)
		if err != nil {
			return Collection{}, err
		}
	}

	s.mu.Lock()
	s.current = c
	s.mu.Unlock()

	s.logger.Debug("Loaded tasks", "key", s.key, "count", c.Len(), "present", ok)
	return c, nil
}

func (s *Store) decode(raw string) (Collection, error) {
	var c Collection
	if err := c.UnmarshalJSON([]byte(raw)); err != nil {
		return Collection{}, &ParseError{Key: s.key, Err: err}
	}
	if s.strict && c.Len() > 0 {
		if result := ValidateBlob([]byte(raw)); !result.Valid {
			return Collection{}, &ParseError{Key: s.key, Err: result.Err()}
		}
	}
	return c, nil
}

// Save writes c as the whole persisted collection. On success the in-memory
// mirror becomes c; on failure the error is logged, the mirror is left as it
// was, and a *StorageWriteError is returned.
func (s *Store) Save(ctx context.Context, c Collection) error {
	data, err := json.Marshal(c)
	if err != nil {
		s.logger.Error("Encoding tasks failed", "key", s.key, "err", err)
		return &StorageWriteError{Key: s.key, Err: err}
	}
	if err := s.provider.Set(ctx, s.key, string(data)); err != nil {
		s.logger.Error("Saving tasks failed", "key", s.key, "err", err)
		return &StorageWriteError{Key: s.key, Err: err}
	}

	s.mu.Lock()
	s.current = c
	s.mu.Unlock()

	s.logger.Debug("Saved tasks", "key", s.key, "count", c.Len())
	return nil
}

// Current returns the in-memory mirror.
func (s *Store) Current() Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Raw returns the stored blob as-is, for diagnostics.
func (s *Store) Raw(ctx context.Context) (string, bool, error) {
	raw, ok, err := s.provider.Get(ctx, s.key)
	if err != nil {
		return "", false, &StorageReadError{Key: s.key, Err: err}
	}
	return raw, ok, nil
}

// Close releases the underlying provider.
func (s *Store) Close() error {
	return kv.Close(s.provider)
}
