package handler

import (
	"net/http"

	"sso-hub/internal/domain"
	"sso-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// CentralSignoutHandler serves the identity service's signout endpoints.
type CentralSignoutHandler struct {
	everywhere *usecase.SignoutEverywhere
	external   *usecase.SignoutExternal
	cascade    *usecase.Cascade
	check      *usecase.CheckCentralSignout
}

// NewCentralSignoutHandler creates a new central signout handler.
func NewCentralSignoutHandler(
	everywhere *usecase.SignoutEverywhere,
	external *usecase.SignoutExternal,
	cascade *usecase.Cascade,
	check *usecase.CheckCentralSignout,
) *CentralSignoutHandler {
	return &CentralSignoutHandler{everywhere: everywhere, external: external, cascade: cascade, check: check}
}

type signoutEverywhereResponse struct {
	Success   bool                    `json:"success"`
	LogoutURL string                  `json:"logoutUrl,omitempty"`
	Services  []domain.ServiceOutcome `json:"services"`
}

type signoutExternalRequest struct {
	UserEmail string `json:"userEmail" validate:"required,email"`
}

type signoutExternalResponse struct {
	Success                bool `json:"success"`
	RequiresCentralSignout bool `json:"requiresCentralSignout"`
}

// HandleSignout processes POST /auth/signout.
func (h *CentralSignoutHandler) HandleSignout(c echo.Context) error {
	result, err := h.everywhere.Execute(c.Request().Context(), c.Request().Header.Get("Cookie"))
	if err != nil {
		return mapDomainError(err)
	}

	services := result.Report.Outcomes
	if services == nil {
		services = []domain.ServiceOutcome{}
	}
	return c.JSON(http.StatusOK, signoutEverywhereResponse{
		Success:   true,
		LogoutURL: result.LogoutURL,
		Services:  services,
	})
}

// HandleExternal processes POST /auth/signout-external from a satellite.
func (h *CentralSignoutHandler) HandleExternal(c echo.Context) error {
	var req signoutExternalRequest
	if err := c.Bind(&req); err != nil {
		return newHTTPError(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return newHTTPError(http.StatusBadRequest, errorBody{Error: err.Error()})
	}

	requires, err := h.external.Execute(c.Request().Context(), req.UserEmail)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, signoutExternalResponse{Success: true, RequiresCentralSignout: requires})
}

// HandleCascade processes GET /auth/signout-cascade?returnUrl=.
func (h *CentralSignoutHandler) HandleCascade(c echo.Context) error {
	returnURL := c.QueryParam("returnUrl")
	if returnURL == "" {
		return newHTTPError(http.StatusBadRequest, errorBody{Error: "returnUrl is required"})
	}

	result, err := h.cascade.Execute(c.Request().Context(), c.Request().Header.Get("Cookie"), returnURL)
	if err != nil {
		return mapDomainError(err)
	}
	return c.Redirect(http.StatusFound, result.RedirectURL)
}

// HandleCheck processes GET /auth/signout-check.
func (h *CentralSignoutHandler) HandleCheck(c echo.Context) error {
	signedOut, err := h.check.Execute(c.Request().Context(), c.Request().Header.Get("Cookie"))
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, signoutCheckResponse{SignedOut: signedOut})
}
