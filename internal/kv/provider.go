// Package kv provides the key-value storage backends the task store persists
// through.
//
// Backends:
//   - file: one file per key in a directory, atomic replace, flock locking
//   - memory: process-local map, used by tests and throwaway sessions
//   - redis: GET/SET under a key prefix
//   - mysql, postgres: a two-column key/value table
package kv

import (
	"context"
	"errors"
	"io"
)

// Provider reads and writes string values by key.
//
// Get returns ok=false with a nil error when the key is absent. A non-nil
// error means the read itself failed.
type Provider interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// ErrClosed is returned by providers used after Close.
var ErrClosed = errors.New("kv: provider closed")

// Close closes p if it holds resources.
func Close(p Provider) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
