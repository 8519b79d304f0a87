package handler

import (
	"net/http"
	"time"

	"sso-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// VerifyHandler handles POST /auth/verify-token.
type VerifyHandler struct {
	uc *usecase.VerifyToken
}

// NewVerifyHandler creates a new verify handler.
func NewVerifyHandler(uc *usecase.VerifyToken) *VerifyHandler {
	return &VerifyHandler{uc: uc}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid     bool      `json:"valid"`
	Email     string    `json:"email"`
	UserID    string    `json:"userId"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Handle verifies the posted token. Every failure yields the same generic 401.
func (h *VerifyHandler) Handle(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return newHTTPError(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}

	claims, err := h.uc.Execute(c.Request().Context(), req.Token)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, verifyResponse{
		Valid:     true,
		Email:     claims.Email,
		UserID:    claims.UserID,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	})
}
