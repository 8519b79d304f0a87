package store

import (
	"context"
	"fmt"
	"time"

	"sso-hub/internal/domain"
)

// Backend is a key-value store owned by the process.
type Backend interface {
	domain.KeyValueStore
	Close() error
}

// Open returns the backend named kind ("memory" or "redis"). A Redis backend
// is pinged before it is returned.
func Open(ctx context.Context, kind, redisURL, prefix string, sweepInterval time.Duration) (Backend, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(sweepInterval), nil
	case "redis":
		s, err := NewRedisStore(redisURL, prefix)
		if err != nil {
			return nil, err
		}
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}
}
