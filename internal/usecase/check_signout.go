package usecase

import (
	"context"
	"errors"
	"log/slog"

	"sso-hub/internal/domain"
)

// CheckSignout consumes a pending signout signal for the session's user.
type CheckSignout struct {
	sessions domain.SessionStore
	signals  domain.SignalStore
	logger   *slog.Logger
}

// NewCheckSignout creates a new CheckSignout usecase.
func NewCheckSignout(sessions domain.SessionStore, signals domain.SignalStore, l *slog.Logger) *CheckSignout {
	return &CheckSignout{sessions: sessions, signals: signals, logger: l}
}

// Execute reports whether the session was signed out by a signal. Any pending
// signal is consumed; a matching one also deletes the session.
func (uc *CheckSignout) Execute(ctx context.Context, sessionID string) (bool, error) {
	entry, err := uc.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	signal, found, err := uc.signals.Consume(ctx, entry.Record.Email)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	// Signals raised before this session existed belong to an earlier login.
	if signal.CreatedAt.Before(entry.CreatedAt) {
		return false, nil
	}

	if _, err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return false, err
	}

	uc.logger.InfoContext(ctx, "session signed out by signal",
		"user_id", entry.Record.ID,
		"session", shortID(sessionID),
		"source", signal.Source,
	)
	return true, nil
}
