package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sso-hub/internal/domain"
)

// InjectUser stores an identity pushed by the identity service.
type InjectUser struct {
	push   domain.PushStore
	access domain.AccessTokenVerifier
	logger *slog.Logger
}

// NewInjectUser creates a new InjectUser usecase. access may be nil, in which
// case pushed credentials are stored without inspection.
func NewInjectUser(push domain.PushStore, access domain.AccessTokenVerifier, l *slog.Logger) *InjectUser {
	return &InjectUser{push: push, access: access, logger: l}
}

// Execute replaces the stored record for record.Email. An empty access
// credential keeps the one already stored. With a verifier configured, a
// credential that is invalid or issued to another user rejects the push.
func (uc *InjectUser) Execute(ctx context.Context, record *domain.IdentityRecord) error {
	if record == nil || record.ID == "" || domain.NormalizeEmail(record.Email) == "" {
		return fmt.Errorf("%w: id and email are required", domain.ErrInvalidRequest)
	}
	record.Email = domain.NormalizeEmail(record.Email)

	if err := uc.checkCredential(ctx, record); err != nil {
		return err
	}

	existing, err := uc.push.Get(ctx, record.Email)
	switch {
	case errors.Is(err, domain.ErrUserDataNotFound):
		existing = nil
	case err != nil:
		return err
	}
	record.PreserveAccessToken(existing)

	if err := uc.push.Put(ctx, record); err != nil {
		uc.logger.ErrorContext(ctx, "failed to store pushed identity", "user_id", record.ID, "error", err)
		return err
	}

	uc.logger.InfoContext(ctx, "identity injected",
		"user_id", record.ID,
		"replaced", existing != nil,
		"has_access_token", record.AccessToken != "",
	)
	return nil
}

func (uc *InjectUser) checkCredential(ctx context.Context, record *domain.IdentityRecord) error {
	if uc.access == nil || record.AccessToken == "" {
		return nil
	}
	claims, err := uc.access.VerifyAccessToken(record.AccessToken)
	if err != nil {
		uc.logger.WarnContext(ctx, "pushed access credential rejected", "user_id", record.ID, "error", err)
		return fmt.Errorf("%w: access credential: %w", domain.ErrInvalidRequest, err)
	}
	if claims.Subject != record.ID || domain.NormalizeEmail(claims.Email) != record.Email {
		uc.logger.WarnContext(ctx, "pushed access credential belongs to another user",
			"user_id", record.ID, "credential_subject", claims.Subject)
		return fmt.Errorf("%w: access credential does not match record", domain.ErrInvalidRequest)
	}
	return nil
}
