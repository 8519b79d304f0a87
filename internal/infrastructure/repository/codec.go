// Package repository provides typed session-relay storage over a domain.KeyValueStore.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sso-hub/internal/domain"
)

// Key namespaces.
const (
	pushPrefix    = "push:"
	sessionPrefix = "session:"
	signalPrefix  = "signal:"
	centralPrefix = "central:"
)

func getJSON[T any](ctx context.Context, kv domain.KeyValueStore, key string) (*T, bool, error) {
	raw, found, err := kv.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, true, nil
}

func setJSON(ctx context.Context, kv domain.KeyValueStore, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw, ttl)
}
