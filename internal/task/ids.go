package task

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Id strategies accepted by NewIDSource.
const (
	IDStrategyUUID      = "uuid"
	IDStrategyTimestamp = "timestamp"
)

// IDSource allocates task ids.
type IDSource interface {
	NewID() string
}

// UUIDSource returns time-ordered UUIDv7 strings.
type UUIDSource struct{}

// NewID returns a new UUIDv7, falling back to a random UUID.
func (UUIDSource) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// TimestampSource returns Unix millisecond timestamps as decimal strings, the
// id format older bucket list blobs use. Ids are strictly increasing within
// one source even when called more than once per millisecond.
type TimestampSource struct {
	// Now defaults to time.Now.
	Now func() time.Time

	mu   sync.Mutex
	last int64
}

// NewID returns the next timestamp id.
func (s *TimestampSource) NewID() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ms := now().UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return strconv.FormatInt(ms, 10)
}

// NewIDSource returns the IDSource for a strategy name.
func NewIDSource(strategy string) (IDSource, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", IDStrategyUUID:
		return UUIDSource{}, nil
	case IDStrategyTimestamp:
		return &TimestampSource{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q (expected uuid|timestamp)", strategy)
	}
}
