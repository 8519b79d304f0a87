package token

import (
	"errors"
	"fmt"
	"time"

	"sso-hub/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessConfig holds configuration for the upstream access credential.
// The identity service needs all fields; satellites only verify and ignore TTL.
type AccessConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// accessClaims is the credential payload. sid binds it to the provider
// session it was minted for.
type accessClaims struct {
	Email    string `json:"email"`
	UserID   string `json:"uid"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
	Sid      string `json:"sid"`
	jwt.RegisteredClaims
}

// AccessIssuer mints the bearer credential that travels inside pushed records.
// Implements domain.AccessTokenIssuer.
type AccessIssuer struct {
	cfg AccessConfig
	now func() time.Time
}

// NewAccessIssuer creates a new access credential issuer.
func NewAccessIssuer(cfg AccessConfig) *AccessIssuer {
	return &AccessIssuer{cfg: cfg, now: time.Now}
}

// IssueAccessToken signs a credential for identity bound to the provider session sessionID.
func (a *AccessIssuer) IssueAccessToken(identity *domain.IdentityRecord, sessionID string) (string, error) {
	if a.cfg.Secret == "" {
		return "", domain.ErrSigningSecretMissing
	}
	if identity == nil || identity.ID == "" || sessionID == "" {
		return "", fmt.Errorf("%w: identity id and session id are required", domain.ErrTokenGeneration)
	}

	now := a.now()
	claims := accessClaims{
		Email:    domain.NormalizeEmail(identity.Email),
		UserID:   identity.ID,
		Username: identity.Username,
		Role:     identity.Role(),
		Sid:      sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    a.cfg.Issuer,
			Subject:   identity.ID,
			Audience:  jwt.ClaimStrings{a.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}
	return signed, nil
}

// AccessVerifier checks credentials minted by AccessIssuer.
// Implements domain.AccessTokenVerifier.
type AccessVerifier struct {
	cfg AccessConfig
	now func() time.Time
}

// NewAccessVerifier creates a verifier. A missing secret is a configuration error.
func NewAccessVerifier(cfg AccessConfig) (*AccessVerifier, error) {
	if cfg.Secret == "" {
		return nil, domain.ErrSigningSecretMissing
	}
	return &AccessVerifier{cfg: cfg, now: time.Now}, nil
}

// VerifyAccessToken checks algorithm, signature, expiry and, when configured,
// issuer and audience. Expiry wraps domain.ErrTokenExpired, anything else domain.ErrTokenInvalid.
func (v *AccessVerifier) VerifyAccessToken(tokenStr string) (*domain.AccessClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &accessClaims{}, func(*jwt.Token) (any, error) {
		return []byte(v.cfg.Secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", domain.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.Sid == "" {
		return nil, domain.ErrTokenInvalid
	}

	result := &domain.AccessClaims{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Username:  claims.Username,
		Role:      claims.Role,
		SessionID: claims.Sid,
		TokenID:   claims.ID,
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}
