package usecase

import (
	"context"
	"fmt"

	"sso-hub/internal/domain"
)

// GetUser returns the full pushed record, access credential included, to trusted callers.
type GetUser struct {
	push domain.PushStore
}

// NewGetUser creates a new GetUser usecase.
func NewGetUser(push domain.PushStore) *GetUser {
	return &GetUser{push: push}
}

// Execute looks up the record pushed for email.
func (uc *GetUser) Execute(ctx context.Context, email string) (*domain.IdentityRecord, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidRequest)
	}
	return uc.push.Get(ctx, email)
}
