package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sso-hub/internal/domain"
	"sso-hub/internal/metrics"
)

// SignalSourceSatellite marks signals raised by a satellite-initiated signout.
const SignalSourceSatellite = "satellite"

// SignoutExternal handles a satellite reporting that a user logged out there.
type SignoutExternal struct {
	central    domain.CentralSessionStore
	provider   domain.IdentityProvider
	signals    domain.SignalStore
	propagator *Propagator
	logger     *slog.Logger
}

// NewSignoutExternal creates a new SignoutExternal usecase.
func NewSignoutExternal(
	central domain.CentralSessionStore,
	provider domain.IdentityProvider,
	signals domain.SignalStore,
	propagator *Propagator,
	l *slog.Logger,
) *SignoutExternal {
	return &SignoutExternal{
		central:    central,
		provider:   provider,
		signals:    signals,
		propagator: propagator,
		logger:     l,
	}
}

// Execute reports whether the calling browser must end its central session.
//
// Only an email matching the active central session triggers anything: the
// central record is dropped, provider sessions are revoked, the remaining
// satellites are told to remove the user and a signal is raised. Any other
// email is a stale push and is ignored.
func (uc *SignoutExternal) Execute(ctx context.Context, email string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return false, fmt.Errorf("%w: userEmail is required", domain.ErrInvalidRequest)
	}

	active, err := uc.central.Get(ctx, email)
	if errors.Is(err, domain.ErrSessionNotFound) {
		uc.logger.InfoContext(ctx, "external signout for inactive user ignored")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := uc.central.Delete(ctx, email); err != nil {
		return false, err
	}

	if err := uc.provider.RevokeSessions(ctx, active.UserID); err != nil {
		uc.logger.WarnContext(ctx, "failed to revoke provider sessions", "user_id", active.UserID, "error", err)
	}

	if _, err := uc.propagator.RemoveUser(ctx, email); err != nil {
		uc.logger.WarnContext(ctx, "satellite removal skipped", "user_id", active.UserID, "error", err)
	}

	if err := uc.signals.Mark(ctx, domain.SignoutSignal{Email: email, Source: SignalSourceSatellite}); err != nil {
		uc.logger.WarnContext(ctx, "failed to mark signout signal", "user_id", active.UserID, "error", err)
	}

	metrics.RecordSignout("external", true)
	uc.logger.InfoContext(ctx, "external signout matched central session", "user_id", active.UserID)
	return true, nil
}
