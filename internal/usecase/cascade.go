package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sso-hub/internal/domain"
	"sso-hub/internal/metrics"
	"sso-hub/utils/logger"
)

// CascadeResult is where the browser goes once every satellite has been visited.
type CascadeResult struct {
	RedirectURL string
	Report      *domain.PropagationReport
}

// Cascade is the best-effort signout fallback: it visits every satellite one
// after another with a fixed per-hop timeout and never retries.
type Cascade struct {
	provider   domain.IdentityProvider
	registry   domain.SatelliteRegistry
	client     domain.SatelliteClient
	central    domain.CentralSessionStore
	signals    domain.SignalStore
	guard      *RedirectGuard
	hopTimeout time.Duration
	logger     *slog.Logger
}

// NewCascade creates a new Cascade usecase.
func NewCascade(
	provider domain.IdentityProvider,
	registry domain.SatelliteRegistry,
	client domain.SatelliteClient,
	central domain.CentralSessionStore,
	signals domain.SignalStore,
	guard *RedirectGuard,
	hopTimeout time.Duration,
	l *slog.Logger,
) *Cascade {
	return &Cascade{
		provider:   provider,
		registry:   registry,
		client:     client,
		central:    central,
		signals:    signals,
		guard:      guard,
		hopTimeout: hopTimeout,
		logger:     l,
	}
}

// Execute signs the cookie's user out of every satellite and returns the
// redirect target. Without a provider session there is nobody to sign out and
// the browser goes straight to returnURL. An unreachable provider is returned
// as domain.ErrProviderUnavailable so the browser can retry.
func (uc *Cascade) Execute(ctx context.Context, cookie, returnURL string) (*CascadeResult, error) {
	target, err := uc.guard.Validate(ctx, returnURL)
	if err != nil {
		return nil, err
	}
	result := &CascadeResult{
		RedirectURL: target,
		Report:      &domain.PropagationReport{Operation: domain.OperationCascade},
	}

	session, err := uc.provider.ResolveSession(ctx, cookie)
	if errors.Is(err, domain.ErrProviderUnavailable) {
		uc.logger.WarnContext(ctx, "signout cascade aborted, identity provider unreachable", "error", err)
		metrics.RecordSignout("cascade", false)
		return nil, err
	}
	if err != nil {
		uc.logger.InfoContext(ctx, "signout cascade without provider session", "reason", err)
		return result, nil
	}
	email := session.Record.Email

	satellites, err := uc.registry.Satellites(ctx)
	if err != nil {
		uc.logger.WarnContext(ctx, "signout cascade could not list satellites", "error", err)
	}
	for _, sat := range satellites {
		result.Report.Outcomes = append(result.Report.Outcomes, uc.hop(ctx, sat, email))
	}

	if _, err := uc.central.Delete(ctx, email); err != nil {
		uc.logger.WarnContext(ctx, "failed to delete central session", "user_id", session.Record.ID, "error", err)
	}
	if err := uc.signals.Mark(ctx, domain.SignoutSignal{Email: email, Source: SignalSourceCentral}); err != nil {
		uc.logger.WarnContext(ctx, "failed to mark signout signal", "user_id", session.Record.ID, "error", err)
	}

	if logoutURL, err := uc.provider.LogoutURL(ctx, cookie, target); err == nil && logoutURL != "" {
		result.RedirectURL = logoutURL
	} else if err != nil {
		uc.logger.WarnContext(ctx, "failed to create provider logout flow", "user_id", session.Record.ID, "error", err)
	}

	metrics.RecordSignout("cascade", result.Report.Failed() == 0)
	uc.logger.InfoContext(ctx, "signout cascade completed",
		"user_id", session.Record.ID,
		"visited", len(result.Report.Outcomes),
		"skipped", result.Report.Failed(),
	)
	return result, nil
}

func (uc *Cascade) hop(ctx context.Context, sat domain.Satellite, email string) domain.ServiceOutcome {
	ctx = logger.WithPeer(ctx, sat.Name)
	hopCtx, cancel := context.WithTimeout(ctx, uc.hopTimeout)
	defer cancel()

	start := time.Now()
	reply, err := uc.client.Remove(hopCtx, sat, email)
	elapsed := time.Since(start)

	outcome := domain.ServiceOutcome{
		Service:    sat.Name,
		URL:        sat.BaseURL,
		OK:         err == nil,
		Status:     reply.Status,
		Existed:    reply.Existed,
		DurationMS: elapsed.Milliseconds(),
	}
	if err != nil {
		outcome.Error = err.Error()
		uc.logger.InfoContext(ctx, "signout cascade skipped satellite", "status", reply.Status, "error", err)
	}
	metrics.RecordPropagation(domain.OperationCascade, sat.Name, outcome.OK, elapsed.Seconds())
	return outcome
}
