package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"sso-hub/internal/domain"

	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Error string `json:"error"`
}

// ServiceAuth guards service-to-service endpoints with the shared secret in
// the X-Service-Secret header. Missing and wrong secrets get the same 401.
func ServiceAuth(secret string) echo.MiddlewareFunc {
	secretBytes := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := []byte(c.Request().Header.Get(domain.ServiceSecretHeader))
			if len(secretBytes) == 0 || subtle.ConstantTimeCompare(provided, secretBytes) != 1 {
				slog.WarnContext(c.Request().Context(), "rejected service call",
					"path", c.Path(),
					"remote_addr", c.RealIP(),
					"header_present", len(provided) > 0,
				)
				return echo.NewHTTPError(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			}
			return next(c)
		}
	}
}
