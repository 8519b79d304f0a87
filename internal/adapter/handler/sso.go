package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"sso-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SSOHandler handles GET /sso/callback on the identity service.
type SSOHandler struct {
	uc        *usecase.SSOCallback
	loginURL  string
	publicURL string
}

// NewSSOHandler creates a new SSO handler. Unauthenticated browsers are sent
// to loginURL with a return_to pointing back at this callback on publicURL.
func NewSSOHandler(uc *usecase.SSOCallback, loginURL, publicURL string) *SSOHandler {
	return &SSOHandler{uc: uc, loginURL: loginURL, publicURL: strings.TrimRight(publicURL, "/")}
}

// Handle redirects to login when unauthenticated, otherwise to callbackUrl with an ssoToken.
func (h *SSOHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()
	callbackURL := c.QueryParam("callbackUrl")
	if callbackURL == "" {
		return newHTTPError(http.StatusBadRequest, errorBody{Error: "callbackUrl is required"})
	}

	result, err := h.uc.Execute(ctx, c.Request().Header.Get("Cookie"), callbackURL)
	if err != nil {
		if requiresLogin(err) {
			return c.Redirect(http.StatusFound, h.loginRedirect(callbackURL))
		}
		slog.WarnContext(ctx, "sso callback failed", "error", err, "remote_addr", c.RealIP())
		return mapDomainError(err)
	}

	return c.Redirect(http.StatusFound, result.RedirectURL)
}

func (h *SSOHandler) loginRedirect(callbackURL string) string {
	returnTo := h.publicURL + "/sso/callback?" + url.Values{"callbackUrl": {callbackURL}}.Encode()

	u, err := url.Parse(h.loginURL)
	if err != nil {
		return h.loginURL
	}
	q := u.Query()
	q.Set("return_to", returnTo)
	u.RawQuery = q.Encode()
	return u.String()
}
