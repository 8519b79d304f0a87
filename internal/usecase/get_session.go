package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sso-hub/internal/domain"
)

// GetSession resolves a session cookie to the user's current record.
type GetSession struct {
	sessions domain.SessionStore
	push     domain.PushStore
	now      func() time.Time
	logger   *slog.Logger
}

// NewGetSession creates a new GetSession usecase.
func NewGetSession(sessions domain.SessionStore, push domain.PushStore, l *slog.Logger) *GetSession {
	return &GetSession{sessions: sessions, push: push, now: time.Now, logger: l}
}

// Execute returns the record bound to sessionID.
//
// Unknown ids fail with domain.ErrSessionNotFound. Entries past their lifetime, or
// whose pushed record has been removed since, are deleted and fail with
// domain.ErrSessionExpired. A lookup never resolves to any record other than the
// one the session was created for.
func (uc *GetSession) Execute(ctx context.Context, sessionID string) (*domain.IdentityRecord, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}

	entry, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if entry.Expired(uc.now()) {
		uc.drop(ctx, sessionID, "expired")
		return nil, domain.ErrSessionExpired
	}

	current, err := uc.push.Get(ctx, entry.Record.Email)
	if errors.Is(err, domain.ErrUserDataNotFound) {
		uc.drop(ctx, sessionID, "identity removed")
		return nil, domain.ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}

	if !current.Equal(entry.Record) {
		entry.Record = *current
		if err := uc.sessions.Put(ctx, entry); err != nil {
			uc.logger.WarnContext(ctx, "failed to refresh session copy", "session", shortID(sessionID), "error", err)
		}
	}

	return current, nil
}

func (uc *GetSession) drop(ctx context.Context, sessionID, reason string) {
	if _, err := uc.sessions.Delete(ctx, sessionID); err != nil {
		uc.logger.WarnContext(ctx, "failed to delete stale session", "session", shortID(sessionID), "error", err)
		return
	}
	uc.logger.InfoContext(ctx, "stale session dropped", "session", shortID(sessionID), "reason", reason)
}
