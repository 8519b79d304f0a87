package handler

import (
	"errors"
	"net/http"

	"sso-hub/internal/domain"
	"sso-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SessionHandler serves the browser-facing session endpoints of a satellite.
type SessionHandler struct {
	establish *usecase.EstablishSession
	get       *usecase.GetSession
	cookie    CookieConfig
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(establish *usecase.EstablishSession, get *usecase.GetSession, cookie CookieConfig) *SessionHandler {
	return &SessionHandler{establish: establish, get: get, cookie: cookie}
}

// HandleEstablish processes GET /session/establish. With an ssoToken it
// creates a new session and sets the cookie; without one it behaves like HandleGet.
func (h *SessionHandler) HandleEstablish(c echo.Context) error {
	token := c.QueryParam("ssoToken")
	if token == "" {
		return h.HandleGet(c)
	}

	entry, err := h.establish.FromToken(c.Request().Context(), token)
	if err != nil {
		return mapDomainError(err)
	}

	h.cookie.set(c, entry.ID)
	return c.JSON(http.StatusOK, entry.Record.Public())
}

// HandleGet processes GET /session, returning the public record for the session cookie.
func (h *SessionHandler) HandleGet(c echo.Context) error {
	sid := h.cookie.sessionID(c)

	record, err := h.get.Execute(c.Request().Context(), sid)
	if err != nil {
		if sid != "" && (errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired)) {
			h.cookie.clear(c)
		}
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, record.Public())
}
