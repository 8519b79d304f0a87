package handler

import (
	"errors"
	"net/http"

	"sso-hub/internal/domain"

	"github.com/labstack/echo/v4"
)

// Reason codes that tell clients how to recover from a failed session lookup.
const (
	ReasonNoSession      = "no_session"
	ReasonSessionExpired = "session_expired"
	ReasonNoUserData     = "no_user_data"
)

// errorBody is the JSON body of every error response.
type errorBody struct {
	Error         string `json:"error"`
	Reason        string `json:"reason,omitempty"`
	RequiresLogin bool   `json:"requiresLogin,omitempty"`
}

func newHTTPError(code int, body errorBody) *echo.HTTPError {
	return echo.NewHTTPError(code, body)
}

// mapDomainError converts a domain error into an appropriate echo.HTTPError.
func mapDomainError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return newHTTPError(http.StatusUnauthorized, errorBody{Error: "session not found", Reason: ReasonNoSession, RequiresLogin: true})

	case errors.Is(err, domain.ErrSessionExpired):
		return newHTTPError(http.StatusUnauthorized, errorBody{Error: "session expired", Reason: ReasonSessionExpired, RequiresLogin: true})

	case errors.Is(err, domain.ErrUserDataNotFound):
		return newHTTPError(http.StatusNotFound, errorBody{Error: domain.ErrUserDataNotFound.Error(), Reason: ReasonNoUserData, RequiresLogin: true})

	// Expiry and tampering share one message.
	case errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired):
		return newHTTPError(http.StatusUnauthorized, errorBody{Error: "invalid token", RequiresLogin: true})

	case errors.Is(err, domain.ErrAuthFailed),
		errors.Is(err, domain.ErrSessionInactive),
		errors.Is(err, domain.ErrMissingIdentity):
		return newHTTPError(http.StatusUnauthorized, errorBody{Error: "authentication required", RequiresLogin: true})

	case errors.Is(err, domain.ErrUnauthorizedService):
		return newHTTPError(http.StatusUnauthorized, errorBody{Error: "unauthorized"})

	case errors.Is(err, domain.ErrInvalidRequest):
		return newHTTPError(http.StatusBadRequest, errorBody{Error: "invalid request"})

	case errors.Is(err, domain.ErrInvalidRedirect):
		return newHTTPError(http.StatusBadRequest, errorBody{Error: "redirect target not allowed"})

	case errors.Is(err, domain.ErrRateLimited):
		return newHTTPError(http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})

	case errors.Is(err, domain.ErrProviderUnavailable):
		return newHTTPError(http.StatusBadGateway, errorBody{Error: "identity provider unavailable"})

	case errors.Is(err, domain.ErrIdentityServiceUnavailable),
		errors.Is(err, domain.ErrSatelliteUnavailable):
		return newHTTPError(http.StatusBadGateway, errorBody{Error: "upstream service unavailable"})

	case errors.Is(err, domain.ErrRegistryUnavailable),
		errors.Is(err, domain.ErrStoreUnavailable):
		return newHTTPError(http.StatusServiceUnavailable, errorBody{Error: "service unavailable"})

	case errors.Is(err, domain.ErrTokenGeneration),
		errors.Is(err, domain.ErrSigningSecretMissing),
		errors.Is(err, domain.ErrProviderNotConfigured):
		return newHTTPError(http.StatusInternalServerError, errorBody{Error: "internal configuration error"})

	default:
		return newHTTPError(http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// requiresLogin reports whether err means the browser has no usable provider session.
func requiresLogin(err error) bool {
	return errors.Is(err, domain.ErrSessionNotFound) ||
		errors.Is(err, domain.ErrAuthFailed) ||
		errors.Is(err, domain.ErrSessionInactive) ||
		errors.Is(err, domain.ErrMissingIdentity)
}
