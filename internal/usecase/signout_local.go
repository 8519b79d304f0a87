package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sso-hub/internal/domain"
	"sso-hub/internal/metrics"
)

// SignoutResult tells the browser what it still has to do after a local signout.
type SignoutResult struct {
	RequiresCentralSignout bool
	CentralSignoutURL      string
}

// SignoutLocal ends a satellite session and notifies the identity service.
type SignoutLocal struct {
	sessions          domain.SessionStore
	push              domain.PushStore
	identity          domain.IdentityServiceClient
	timeout           time.Duration
	centralSignoutURL string
	logger            *slog.Logger
}

// NewSignoutLocal creates a new SignoutLocal usecase. centralSignoutURL is
// where the browser ends its central session when required.
func NewSignoutLocal(
	sessions domain.SessionStore,
	push domain.PushStore,
	identity domain.IdentityServiceClient,
	timeout time.Duration,
	centralSignoutURL string,
	l *slog.Logger,
) *SignoutLocal {
	return &SignoutLocal{
		sessions:          sessions,
		push:              push,
		identity:          identity,
		timeout:           timeout,
		centralSignoutURL: centralSignoutURL,
		logger:            l,
	}
}

// Execute deletes the session and its pushed record. Signing out an unknown
// session succeeds with nothing left to do.
func (uc *SignoutLocal) Execute(ctx context.Context, sessionID string) (*SignoutResult, error) {
	entry, err := uc.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return &SignoutResult{}, nil
	}
	if err != nil {
		metrics.RecordSignout("local", false)
		return nil, err
	}

	if _, err := uc.sessions.Delete(ctx, sessionID); err != nil {
		metrics.RecordSignout("local", false)
		return nil, err
	}
	email := entry.Record.Email
	if _, err := uc.push.Delete(ctx, email); err != nil {
		uc.logger.WarnContext(ctx, "failed to delete pushed identity", "user_id", entry.Record.ID, "error", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	requires, err := uc.identity.SignoutExternal(callCtx, email)
	if err != nil {
		// The central session state is unknown; send the browser through central signout.
		uc.logger.WarnContext(ctx, "identity service signout notification failed", "user_id", entry.Record.ID, "error", err)
		requires = true
	}

	metrics.RecordSignout("local", true)
	uc.logger.InfoContext(ctx, "local signout completed",
		"user_id", entry.Record.ID,
		"session", shortID(sessionID),
		"requires_central_signout", requires,
	)

	result := &SignoutResult{RequiresCentralSignout: requires}
	if requires {
		result.CentralSignoutURL = uc.centralSignoutURL
	}
	return result, nil
}
