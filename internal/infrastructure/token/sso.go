package token

import (
	"errors"
	"fmt"
	"time"

	"sso-hub/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SSOConfig holds handoff token configuration shared by issuer and verifier.
type SSOConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// ssoClaims represents the JWT claims of a handoff token.
type ssoClaims struct {
	Email  string `json:"email"`
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// SSOIssuer mints short-lived handoff tokens.
// Implements domain.TokenIssuer.
type SSOIssuer struct {
	cfg SSOConfig
	now func() time.Time
}

// NewSSOIssuer creates a new issuer. A missing secret is a configuration error.
func NewSSOIssuer(cfg SSOConfig) (*SSOIssuer, error) {
	if cfg.Secret == "" {
		return nil, domain.ErrSigningSecretMissing
	}
	return &SSOIssuer{cfg: cfg, now: time.Now}, nil
}

// Issue signs a token for an already authenticated identity.
func (i *SSOIssuer) Issue(identity *domain.IdentityRecord) (string, error) {
	now := i.now()
	claims := ssoClaims{
		Email:  domain.NormalizeEmail(identity.Email),
		UserID: identity.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.cfg.Issuer,
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(i.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}
	return signed, nil
}

// SSOVerifier validates handoff tokens.
// Implements domain.TokenVerifier.
type SSOVerifier struct {
	cfg SSOConfig
	now func() time.Time
}

// NewSSOVerifier creates a new verifier. A missing secret is a configuration error.
func NewSSOVerifier(cfg SSOConfig) (*SSOVerifier, error) {
	if cfg.Secret == "" {
		return nil, domain.ErrSigningSecretMissing
	}
	return &SSOVerifier{cfg: cfg, now: time.Now}, nil
}

// Verify checks signature, algorithm, issuer and expiry.
// Expiry failures wrap domain.ErrTokenExpired, everything else domain.ErrTokenInvalid.
func (v *SSOVerifier) Verify(tokenStr string) (*domain.SSOClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &ssoClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(v.cfg.Secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", domain.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*ssoClaims)
	if !ok || !parsed.Valid || claims.Email == "" || claims.UserID == "" {
		return nil, domain.ErrTokenInvalid
	}

	result := &domain.SSOClaims{
		Email:   claims.Email,
		UserID:  claims.UserID,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}
