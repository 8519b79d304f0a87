package usecase

import (
	"context"
	"log/slog"

	"sso-hub/internal/domain"
	"sso-hub/internal/metrics"
)

// SignalSourceCentral marks signals raised by a central signout.
const SignalSourceCentral = "central"

// SignoutEverywhereResult carries the provider logout URL and per-satellite outcomes.
type SignoutEverywhereResult struct {
	LogoutURL string
	Report    *domain.PropagationReport
}

// SignoutEverywhere ends the user's sessions on the identity service and every satellite.
type SignoutEverywhere struct {
	provider   domain.IdentityProvider
	central    domain.CentralSessionStore
	signals    domain.SignalStore
	propagator *Propagator
	returnTo   string
	logger     *slog.Logger
}

// NewSignoutEverywhere creates a new SignoutEverywhere usecase. returnTo is
// where the provider sends the browser once its session is gone.
func NewSignoutEverywhere(
	provider domain.IdentityProvider,
	central domain.CentralSessionStore,
	signals domain.SignalStore,
	propagator *Propagator,
	returnTo string,
	l *slog.Logger,
) *SignoutEverywhere {
	return &SignoutEverywhere{
		provider:   provider,
		central:    central,
		signals:    signals,
		propagator: propagator,
		returnTo:   returnTo,
		logger:     l,
	}
}

// Execute removes the cookie's user from every satellite, drops the central
// record and returns the URL the browser must visit to clear its provider session.
func (uc *SignoutEverywhere) Execute(ctx context.Context, cookie string) (*SignoutEverywhereResult, error) {
	session, err := uc.provider.ResolveSession(ctx, cookie)
	if err != nil {
		return nil, err
	}
	email := session.Record.Email

	report, err := uc.propagator.RemoveUser(ctx, email)
	if err != nil {
		uc.logger.WarnContext(ctx, "satellite removal skipped", "user_id", session.Record.ID, "error", err)
		report = &domain.PropagationReport{Operation: domain.OperationRemove}
	}

	if _, err := uc.central.Delete(ctx, email); err != nil {
		uc.logger.WarnContext(ctx, "failed to delete central session", "user_id", session.Record.ID, "error", err)
	}
	if err := uc.signals.Mark(ctx, domain.SignoutSignal{Email: email, Source: SignalSourceCentral}); err != nil {
		uc.logger.WarnContext(ctx, "failed to mark signout signal", "user_id", session.Record.ID, "error", err)
	}

	logoutURL, err := uc.provider.LogoutURL(ctx, cookie, uc.returnTo)
	if err != nil {
		uc.logger.WarnContext(ctx, "failed to create provider logout flow", "user_id", session.Record.ID, "error", err)
	}

	metrics.RecordSignout("everywhere", report.Failed() == 0)
	uc.logger.InfoContext(ctx, "central signout completed",
		"user_id", session.Record.ID,
		"satellites_failed", report.Failed(),
	)
	return &SignoutEverywhereResult{LogoutURL: logoutURL, Report: report}, nil
}
