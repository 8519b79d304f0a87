package repository

import (
	"context"
	"time"

	"sso-hub/internal/domain"
)

// CentralSessionRepository stores the identity service's active session per user.
// Implements domain.CentralSessionStore.
type CentralSessionRepository struct {
	kv  domain.KeyValueStore
	ttl time.Duration
}

// NewCentralSessionRepository creates a central session repository.
func NewCentralSessionRepository(kv domain.KeyValueStore, ttl time.Duration) *CentralSessionRepository {
	return &CentralSessionRepository{kv: kv, ttl: ttl}
}

// Get returns the active central session for email or domain.ErrSessionNotFound.
func (r *CentralSessionRepository) Get(ctx context.Context, email string) (*domain.CentralSession, error) {
	cs, found, err := getJSON[domain.CentralSession](ctx, r.kv, centralPrefix+domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrSessionNotFound
	}
	return cs, nil
}

// Put records session as the active one for its email.
func (r *CentralSessionRepository) Put(ctx context.Context, session *domain.CentralSession) error {
	return setJSON(ctx, r.kv, centralPrefix+domain.NormalizeEmail(session.Email), session, r.ttl)
}

// Delete drops the active central session for email.
func (r *CentralSessionRepository) Delete(ctx context.Context, email string) (bool, error) {
	return r.kv.Delete(ctx, centralPrefix+domain.NormalizeEmail(email))
}
