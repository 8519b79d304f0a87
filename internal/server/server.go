// Package server builds the echo instance both binaries share.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	appmiddleware "sso-hub/middleware"
	"sso-hub/utils/logger"
	"sso-hub/utils/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

// Options controls the shared middleware stack.
type Options struct {
	ServiceName string
	OTel        bool
	HSTS        bool
}

// New returns an echo instance with the request id, tracing, logging,
// recovery and validation stack installed and /metrics registered.
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
		},
	}))
	e.Use(appmiddleware.SecurityHeaders(opts.HSTS))

	if opts.OTel {
		e.Use(otelecho.Middleware(opts.ServiceName, otelecho.WithSkipper(func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		})))
		e.Use(appmiddleware.OTelStatusMiddleware())
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.WarnContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}

// Run serves e on :port until ctx is cancelled, then shuts the server down and
// runs every cleanup with the same timeout.
func Run(ctx context.Context, e *echo.Echo, port string, timeout time.Duration, cleanups ...func(context.Context) error) error {
	address := fmt.Sprintf(":%s", port)
	errCh := make(chan error, 1)

	go func() {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	errs := []error{serveErr, e.Shutdown(shutdownCtx)}
	for _, cleanup := range cleanups {
		errs = append(errs, cleanup(shutdownCtx))
	}
	return errors.Join(errs...)
}

// Healthcheck checks the local /health endpoint. Used by the container
// healthcheck subcommand of both binaries.
func Healthcheck(port string) error {
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
