package repository

import (
	"context"
	"time"

	"sso-hub/internal/domain"
)

// SessionRepository stores session entries by session id.
// Implements domain.SessionStore.
type SessionRepository struct {
	kv domain.KeyValueStore
}

// NewSessionRepository creates a session repository.
func NewSessionRepository(kv domain.KeyValueStore) *SessionRepository {
	return &SessionRepository{kv: kv}
}

// Get returns the entry for sessionID or domain.ErrSessionNotFound.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.SessionEntry, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}
	entry, found, err := getJSON[domain.SessionEntry](ctx, r.kv, sessionPrefix+sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrSessionNotFound
	}
	return entry, nil
}

// Put stores entry until its ExpiresAt.
func (r *SessionRepository) Put(ctx context.Context, entry *domain.SessionEntry) error {
	var ttl time.Duration
	if !entry.ExpiresAt.IsZero() {
		ttl = time.Until(entry.ExpiresAt)
		if ttl <= 0 {
			return domain.ErrSessionExpired
		}
	}
	return setJSON(ctx, r.kv, sessionPrefix+entry.ID, entry, ttl)
}

// Delete removes the entry for sessionID if present.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return r.kv.Delete(ctx, sessionPrefix+sessionID)
}
