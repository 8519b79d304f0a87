package handler

import (
	"log/slog"
	"net/http"

	"sso-hub/internal/domain"
	"sso-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// InternalUserHandler serves the satellite's service-to-service endpoints.
// Routes are expected behind the service secret middleware.
type InternalUserHandler struct {
	inject    *usecase.InjectUser
	remove    *usecase.RemoveUser
	get       *usecase.GetUser
	establish *usecase.EstablishSession
	cookie    CookieConfig
}

// NewInternalUserHandler creates a new internal user handler.
func NewInternalUserHandler(
	inject *usecase.InjectUser,
	remove *usecase.RemoveUser,
	get *usecase.GetUser,
	establish *usecase.EstablishSession,
	cookie CookieConfig,
) *InternalUserHandler {
	return &InternalUserHandler{inject: inject, remove: remove, get: get, establish: establish, cookie: cookie}
}

type injectResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

type emailRequest struct {
	Email string `json:"email" query:"email" validate:"required,email"`
}

type removeResponse struct {
	Success bool `json:"success"`
	Existed bool `json:"existed"`
}

type establishResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
}

// HandleInject processes POST /internal/user/inject.
func (h *InternalUserHandler) HandleInject(c echo.Context) error {
	var record domain.IdentityRecord
	if err := c.Bind(&record); err != nil {
		return newHTTPError(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}

	if err := h.inject.Execute(c.Request().Context(), &record); err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, injectResponse{Success: true, UserID: record.ID})
}

// HandleRemove processes DELETE /internal/user/remove.
func (h *InternalUserHandler) HandleRemove(c echo.Context) error {
	req, err := bindEmail(c)
	if err != nil {
		return err
	}

	existed, err := h.remove.Execute(c.Request().Context(), req.Email)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, removeResponse{Success: true, Existed: existed})
}

// HandleGet processes GET /internal/user?email=. The response includes the access credential.
func (h *InternalUserHandler) HandleGet(c echo.Context) error {
	req, err := bindEmail(c)
	if err != nil {
		return err
	}

	record, err := h.get.Execute(c.Request().Context(), req.Email)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, record)
}

// HandleEstablish processes POST /internal/session/establish, creating a
// session from pushed data. Only a freshly minted session id is ever used.
func (h *InternalUserHandler) HandleEstablish(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := bindEmail(c)
	if err != nil {
		return err
	}

	entry, err := h.establish.FromPush(ctx, req.Email)
	if err != nil {
		slog.InfoContext(ctx, "session establishment from push failed", "error", err, "remote_addr", c.RealIP())
		return mapDomainError(err)
	}

	h.cookie.set(c, entry.ID)
	return c.JSON(http.StatusOK, establishResponse{Success: true, SessionID: entry.ID})
}

func bindEmail(c echo.Context) (*emailRequest, error) {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return nil, newHTTPError(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return nil, newHTTPError(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	return &req, nil
}
