package repository

import (
	"context"
	"time"

	"sso-hub/internal/domain"
)

// SignalRepository stores pending signout signals by email.
// Implements domain.SignalStore.
type SignalRepository struct {
	kv  domain.KeyValueStore
	ttl time.Duration
}

// NewSignalRepository creates a signal repository. Unconsumed signals expire after ttl.
func NewSignalRepository(kv domain.KeyValueStore, ttl time.Duration) *SignalRepository {
	return &SignalRepository{kv: kv, ttl: ttl}
}

// Mark sets the signal for signal.Email, replacing any pending one.
func (r *SignalRepository) Mark(ctx context.Context, signal domain.SignoutSignal) error {
	signal.Email = domain.NormalizeEmail(signal.Email)
	if signal.CreatedAt.IsZero() {
		signal.CreatedAt = time.Now()
	}
	return setJSON(ctx, r.kv, signalPrefix+signal.Email, signal, r.ttl)
}

// Consume reads and deletes the signal for email.
func (r *SignalRepository) Consume(ctx context.Context, email string) (*domain.SignoutSignal, bool, error) {
	key := signalPrefix + domain.NormalizeEmail(email)
	signal, found, err := getJSON[domain.SignoutSignal](ctx, r.kv, key)
	if err != nil || !found {
		return nil, false, err
	}
	if _, err := r.kv.Delete(ctx, key); err != nil {
		return nil, false, err
	}
	return signal, true, nil
}
