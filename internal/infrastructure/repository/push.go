package repository

import (
	"context"
	"time"

	"sso-hub/internal/domain"
)

// PushRepository stores pushed identities by email.
// Implements domain.PushStore.
type PushRepository struct {
	kv  domain.KeyValueStore
	ttl time.Duration
}

// NewPushRepository creates a push repository. A zero ttl keeps records until removed.
func NewPushRepository(kv domain.KeyValueStore, ttl time.Duration) *PushRepository {
	return &PushRepository{kv: kv, ttl: ttl}
}

// Get returns the record pushed for email or domain.ErrUserDataNotFound.
func (r *PushRepository) Get(ctx context.Context, email string) (*domain.IdentityRecord, error) {
	rec, found, err := getJSON[domain.IdentityRecord](ctx, r.kv, pushPrefix+domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrUserDataNotFound
	}
	return rec, nil
}

// Put replaces the record stored for record.Email.
func (r *PushRepository) Put(ctx context.Context, record *domain.IdentityRecord) error {
	return setJSON(ctx, r.kv, pushPrefix+domain.NormalizeEmail(record.Email), record, r.ttl)
}

// Delete removes the record for email if present.
func (r *PushRepository) Delete(ctx context.Context, email string) (bool, error) {
	return r.kv.Delete(ctx, pushPrefix+domain.NormalizeEmail(email))
}
