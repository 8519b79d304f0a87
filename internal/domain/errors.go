package domain

import "errors"

// Configuration errors. Fatal at startup.
var (
	ErrSigningSecretMissing = errors.New("signing secret not configured")
	ErrServiceSecretMissing = errors.New("service secret not configured")
	ErrSigningSecretWeak    = errors.New("signing secret too weak")
)

// Token errors.
var (
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenGeneration = errors.New("token generation failed")
)

// Session errors.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")
	ErrUserDataNotFound = errors.New("user not found, retry login")
	ErrAuthFailed       = errors.New("authentication failed")
	ErrSessionInactive  = errors.New("session is not active")
	ErrMissingIdentity  = errors.New("missing identity in session")
)

// Request errors.
var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidRedirect     = errors.New("redirect target not allowed")
	ErrUnauthorizedService = errors.New("unauthorized service call")
	ErrRateLimited         = errors.New("rate limit exceeded")
)

// External service errors.
var (
	ErrProviderUnavailable        = errors.New("identity provider unavailable")
	ErrProviderNotConfigured      = errors.New("identity provider admin API not configured")
	ErrIdentityServiceUnavailable = errors.New("identity service unavailable")
	ErrSatelliteUnavailable       = errors.New("satellite unavailable")
	ErrRegistryUnavailable        = errors.New("satellite registry unavailable")
	ErrStoreUnavailable           = errors.New("session store unavailable")
)
