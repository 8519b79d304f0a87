package handler

import (
	"net/http"

	"sso-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SignoutHandler serves a satellite's signout endpoints.
type SignoutHandler struct {
	signout *usecase.SignoutLocal
	check   *usecase.CheckSignout
	cookie  CookieConfig
}

// NewSignoutHandler creates a new satellite signout handler.
func NewSignoutHandler(signout *usecase.SignoutLocal, check *usecase.CheckSignout, cookie CookieConfig) *SignoutHandler {
	return &SignoutHandler{signout: signout, check: check, cookie: cookie}
}

type signoutResponse struct {
	Success                bool   `json:"success"`
	RequiresCentralSignout bool   `json:"requiresCentralSignout"`
	CentralSignoutURL      string `json:"centralSignoutUrl,omitempty"`
}

type signoutCheckResponse struct {
	SignedOut bool `json:"signedOut"`
}

// HandleSignout processes POST /auth/signout. The cookie is cleared even when no session exists.
func (h *SignoutHandler) HandleSignout(c echo.Context) error {
	result, err := h.signout.Execute(c.Request().Context(), h.cookie.sessionID(c))
	h.cookie.clear(c)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, signoutResponse{
		Success:                true,
		RequiresCentralSignout: result.RequiresCentralSignout,
		CentralSignoutURL:      result.CentralSignoutURL,
	})
}

// HandleCheck processes GET /auth/signout-check.
func (h *SignoutHandler) HandleCheck(c echo.Context) error {
	sid := h.cookie.sessionID(c)
	if sid == "" {
		return c.JSON(http.StatusOK, signoutCheckResponse{SignedOut: false})
	}

	signedOut, err := h.check.Execute(c.Request().Context(), sid)
	if err != nil {
		return mapDomainError(err)
	}
	if signedOut {
		h.cookie.clear(c)
	}
	return c.JSON(http.StatusOK, signoutCheckResponse{SignedOut: signedOut})
}
