package usecase

import (
	"context"
	"log/slog"

	"sso-hub/internal/domain"
)

// VerifyToken checks an SSO token on behalf of a client.
type VerifyToken struct {
	verifier domain.TokenVerifier
	logger   *slog.Logger
}

// NewVerifyToken creates a new VerifyToken usecase.
func NewVerifyToken(v domain.TokenVerifier, l *slog.Logger) *VerifyToken {
	return &VerifyToken{verifier: v, logger: l}
}

// Execute returns the decoded claims of a valid token.
func (uc *VerifyToken) Execute(ctx context.Context, token string) (*domain.SSOClaims, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := uc.verifier.Verify(token)
	if err != nil {
		uc.logger.DebugContext(ctx, "token verification failed", "error", err)
		return nil, err
	}
	return claims, nil
}
