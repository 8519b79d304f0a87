package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sso-hub/internal/domain"
	"sso-hub/utils/logger"
)

// HandoffResult is where the browser goes after a successful SSO callback.
type HandoffResult struct {
	RedirectURL string
	Report      *domain.PropagationReport
}

// SSOCallback hands an authenticated central session off to a satellite.
type SSOCallback struct {
	provider   domain.IdentityProvider
	central    domain.CentralSessionStore
	propagator *Propagator
	issuer     domain.TokenIssuer
	access     domain.AccessTokenIssuer
	guard      *RedirectGuard
	now        func() time.Time
	logger     *slog.Logger
}

// NewSSOCallback creates a new SSOCallback usecase.
func NewSSOCallback(
	provider domain.IdentityProvider,
	central domain.CentralSessionStore,
	propagator *Propagator,
	issuer domain.TokenIssuer,
	access domain.AccessTokenIssuer,
	guard *RedirectGuard,
	l *slog.Logger,
) *SSOCallback {
	return &SSOCallback{
		provider:   provider,
		central:    central,
		propagator: propagator,
		issuer:     issuer,
		access:     access,
		guard:      guard,
		now:        time.Now,
		logger:     l,
	}
}

// Execute resolves the browser's provider session, records it as the central
// session, pushes the identity to every satellite and returns callbackURL with
// a fresh ssoToken.
//
// The identity is pushed before the token is returned, so a satellite that was
// reachable already holds the record when the browser arrives.
func (uc *SSOCallback) Execute(ctx context.Context, cookie, callbackURL string) (*HandoffResult, error) {
	target, err := uc.guard.Validate(ctx, callbackURL)
	if err != nil {
		return nil, err
	}

	session, err := uc.provider.ResolveSession(ctx, cookie)
	if err != nil {
		return nil, err
	}
	record := session.Record
	ctx = logger.WithUserEmail(ctx, record.Email)

	if err := uc.central.Put(ctx, &domain.CentralSession{
		Email:             record.Email,
		UserID:            record.ID,
		ProviderSessionID: session.SessionID,
		CreatedAt:         uc.now(),
	}); err != nil {
		return nil, err
	}

	accessToken, err := uc.access.IssueAccessToken(&record, session.SessionID)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to issue access token", "user_id", record.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}

	report, err := uc.propagator.InjectUser(ctx, &record, accessToken)
	if err != nil {
		// Satellites will answer no_user_data and the client restarts login.
		uc.logger.WarnContext(ctx, "identity propagation skipped", "user_id", record.ID, "error", err)
	}

	token, err := uc.issuer.Issue(&record)
	if err != nil {
		return nil, err
	}

	redirect, err := withQuery(target, "ssoToken", token)
	if err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "sso handoff issued", "user_id", record.ID)
	return &HandoffResult{RedirectURL: redirect, Report: report}, nil
}
