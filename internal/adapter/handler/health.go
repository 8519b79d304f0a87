package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	service string
	checks  map[string]Pinger
}

// NewHealthHandler creates a new health handler. checks may be nil.
func NewHealthHandler(service string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{service: service, checks: checks}
}

// Handle processes the /health endpoint.
func (h *HealthHandler) Handle(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	body := map[string]string{
		"status":  "healthy",
		"service": h.service,
	}
	code := http.StatusOK
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			body[name] = "unavailable"
			body["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		body[name] = "ok"
	}
	return c.JSON(code, body)
}
