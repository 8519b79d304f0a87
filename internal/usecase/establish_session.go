package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sso-hub/internal/domain"
	"sso-hub/internal/metrics"
)

// Session establishment sources.
const (
	SourceToken = "token"
	SourcePush  = "push"
)

// EstablishSession turns a handoff token or pre-pushed identity into a local session.
type EstablishSession struct {
	verifier domain.TokenVerifier
	push     domain.PushStore
	sessions domain.SessionStore
	ids      domain.SessionIDGenerator
	maxAge   time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewEstablishSession creates a new EstablishSession usecase. maxAge bounds every session it creates.
func NewEstablishSession(
	v domain.TokenVerifier,
	push domain.PushStore,
	sessions domain.SessionStore,
	ids domain.SessionIDGenerator,
	maxAge time.Duration,
	l *slog.Logger,
) *EstablishSession {
	return &EstablishSession{
		verifier: v,
		push:     push,
		sessions: sessions,
		ids:      ids,
		maxAge:   maxAge,
		now:      time.Now,
		logger:   l,
	}
}

// FromToken verifies an SSO token and creates a session for its user.
// A valid token without pushed data fails with domain.ErrUserDataNotFound so the client restarts login.
func (uc *EstablishSession) FromToken(ctx context.Context, token string) (*domain.SessionEntry, error) {
	if token == "" {
		metrics.RecordSessionEstablished(SourceToken, false)
		return nil, domain.ErrTokenInvalid
	}

	claims, err := uc.verifier.Verify(token)
	if err != nil {
		metrics.RecordSessionEstablished(SourceToken, false)
		uc.logger.InfoContext(ctx, "sso token rejected", "error", err)
		return nil, err
	}

	entry, err := uc.create(ctx, claims.Email)
	metrics.RecordSessionEstablished(SourceToken, err == nil)
	if err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "session established from token",
		"user_id", entry.Record.ID,
		"token_id", claims.TokenID,
		"session", shortID(entry.ID),
	)
	return entry, nil
}

// FromPush creates a session from data already pushed for email. It always mints a new session id.
func (uc *EstablishSession) FromPush(ctx context.Context, email string) (*domain.SessionEntry, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidRequest)
	}

	entry, err := uc.create(ctx, email)
	metrics.RecordSessionEstablished(SourcePush, err == nil)
	if err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "session established from push",
		"user_id", entry.Record.ID,
		"session", shortID(entry.ID),
	)
	return entry, nil
}

func (uc *EstablishSession) create(ctx context.Context, email string) (*domain.SessionEntry, error) {
	record, err := uc.push.Get(ctx, email)
	if err != nil {
		return nil, err
	}

	sid, err := uc.ids.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}

	now := uc.now()
	entry := &domain.SessionEntry{
		ID:        sid,
		Record:    *record,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.maxAge),
	}
	if err := uc.sessions.Put(ctx, entry); err != nil {
		uc.logger.ErrorContext(ctx, "failed to store session", "error", err)
		return nil, err
	}
	return entry, nil
}

// shortID returns a log-safe prefix of a session id.
func shortID(sid string) string {
	if len(sid) <= 8 {
		return sid
	}
	return sid[:8]
}
