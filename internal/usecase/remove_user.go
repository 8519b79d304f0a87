package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"sso-hub/internal/domain"
)

// SignalSourceIdentity marks signals raised by the identity service.
const SignalSourceIdentity = "identity-service"

// RemoveUser drops a pushed identity and flags the user for local signout.
type RemoveUser struct {
	push    domain.PushStore
	signals domain.SignalStore
	logger  *slog.Logger
}

// NewRemoveUser creates a new RemoveUser usecase.
func NewRemoveUser(push domain.PushStore, signals domain.SignalStore, l *slog.Logger) *RemoveUser {
	return &RemoveUser{push: push, signals: signals, logger: l}
}

// Execute deletes the record for email if present and reports whether it existed.
// Removing an unknown email is not an error.
func (uc *RemoveUser) Execute(ctx context.Context, email string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return false, fmt.Errorf("%w: email is required", domain.ErrInvalidRequest)
	}

	existed, err := uc.push.Delete(ctx, email)
	if err != nil {
		return false, err
	}

	if existed {
		if err := uc.signals.Mark(ctx, domain.SignoutSignal{Email: email, Source: SignalSourceIdentity}); err != nil {
			uc.logger.WarnContext(ctx, "failed to mark signout signal", "error", err)
		}
	}

	uc.logger.InfoContext(ctx, "identity removed", "existed", existed)
	return existed, nil
}
