package usecase

import (
	"context"
	"log/slog"
	"time"

	"sso-hub/internal/domain"
	"sso-hub/internal/metrics"
	"sso-hub/utils/logger"

	"golang.org/x/sync/errgroup"
)

// Propagator fans identity pushes and removals out to every known satellite.
// Each satellite gets its own timeout; one failure never affects the others.
type Propagator struct {
	registry    domain.SatelliteRegistry
	client      domain.SatelliteClient
	timeout     time.Duration
	concurrency int
	logger      *slog.Logger
}

// NewPropagator creates a new Propagator. concurrency caps in-flight calls; values below 1 mean unlimited.
func NewPropagator(
	registry domain.SatelliteRegistry,
	client domain.SatelliteClient,
	timeout time.Duration,
	concurrency int,
	l *slog.Logger,
) *Propagator {
	return &Propagator{
		registry:    registry,
		client:      client,
		timeout:     timeout,
		concurrency: concurrency,
		logger:      l,
	}
}

// InjectUser pushes record to every satellite. A non-empty accessCredential
// replaces the record's access token in the pushed copy.
func (p *Propagator) InjectUser(ctx context.Context, record *domain.IdentityRecord, accessCredential string) (*domain.PropagationReport, error) {
	pushed := *record
	pushed.Email = domain.NormalizeEmail(pushed.Email)
	if accessCredential != "" {
		pushed.AccessToken = accessCredential
	}

	return p.fanOut(ctx, domain.OperationInject, func(ctx context.Context, sat domain.Satellite) (domain.SatelliteReply, error) {
		return p.client.Inject(ctx, sat, &pushed)
	})
}

// RemoveUser deletes the identity for email from every satellite.
func (p *Propagator) RemoveUser(ctx context.Context, email string) (*domain.PropagationReport, error) {
	email = domain.NormalizeEmail(email)
	return p.fanOut(ctx, domain.OperationRemove, func(ctx context.Context, sat domain.Satellite) (domain.SatelliteReply, error) {
		return p.client.Remove(ctx, sat, email)
	})
}

type satelliteCall func(ctx context.Context, sat domain.Satellite) (domain.SatelliteReply, error)

func (p *Propagator) fanOut(ctx context.Context, operation string, call satelliteCall) (*domain.PropagationReport, error) {
	satellites, err := p.registry.Satellites(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to list satellites", "operation", operation, "error", err)
		return nil, err
	}

	report := &domain.PropagationReport{
		Operation: operation,
		Outcomes:  make([]domain.ServiceOutcome, len(satellites)),
	}

	var g errgroup.Group
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}
	for i, sat := range satellites {
		g.Go(func() error {
			report.Outcomes[i] = p.callOne(ctx, operation, sat, call)
			return nil
		})
	}
	_ = g.Wait()

	if failed := report.Failed(); failed > 0 {
		p.logger.WarnContext(ctx, "partial propagation failure",
			"operation", operation,
			"failed", failed,
			"succeeded", report.Succeeded(),
		)
	} else {
		p.logger.InfoContext(ctx, "propagation completed", "operation", operation, "services", len(satellites))
	}
	return report, nil
}

func (p *Propagator) callOne(ctx context.Context, operation string, sat domain.Satellite, call satelliteCall) domain.ServiceOutcome {
	ctx = logger.WithPeer(ctx, sat.Name)
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	reply, err := call(callCtx, sat)
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
		p.logger.WarnContext(ctx, "satellite call failed",
			"operation", operation,
			"status", reply.Status,
			"error", err,
		)
	}
	metrics.RecordPropagation(operation, sat.Name, outcome.OK, elapsed.Seconds())
	return outcome
}
