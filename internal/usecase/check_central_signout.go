package usecase

import (
	"context"
	"errors"
	"log/slog"

	"sso-hub/internal/domain"
)

// CheckCentralSignout tells an identity-service page whether its user has been signed out.
type CheckCentralSignout struct {
	provider domain.IdentityProvider
	signals  domain.SignalStore
	logger   *slog.Logger
}

// NewCheckCentralSignout creates a new CheckCentralSignout usecase.
func NewCheckCentralSignout(provider domain.IdentityProvider, signals domain.SignalStore, l *slog.Logger) *CheckCentralSignout {
	return &CheckCentralSignout{provider: provider, signals: signals, logger: l}
}

// Execute reports signedOut when the provider no longer knows the session or a
// pending signal existed for its user. The signal is consumed.
func (uc *CheckCentralSignout) Execute(ctx context.Context, cookie string) (bool, error) {
	session, err := uc.provider.ResolveSession(ctx, cookie)
	if err != nil {
		if errors.Is(err, domain.ErrProviderUnavailable) {
			return false, err
		}
		return true, nil
	}

	signal, found, err := uc.signals.Consume(ctx, session.Record.Email)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	// A signal older than the current login belongs to an earlier session.
	if !session.AuthenticatedAt.IsZero() && signal.CreatedAt.Before(session.AuthenticatedAt) {
		return false, nil
	}

	uc.logger.InfoContext(ctx, "central signout signal consumed", "user_id", session.Record.ID, "source", signal.Source)
	return true, nil
}
