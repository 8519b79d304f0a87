package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sso-hub/config"
	"sso-hub/internal/adapter/gateway"
	adapterhandler "sso-hub/internal/adapter/handler"
	"sso-hub/internal/domain"
	"sso-hub/internal/infrastructure/repository"
	"sso-hub/internal/infrastructure/store"
	infratoken "sso-hub/internal/infrastructure/token"
	"sso-hub/internal/server"
	"sso-hub/internal/usecase"
	appmiddleware "sso-hub/middleware"
	"sso-hub/utils/logger"
	"sso-hub/utils/otel"

	"golang.org/x/time/rate"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8081"
		}
		if err := server.Healthcheck(port); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	name := os.Getenv("SERVICE_NAME")
	if name == "" {
		name = "satellite"
	}

	otelCfg := otel.ConfigFromEnv(name)
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	log := logger.Init(name, otelCfg.Enabled)

	cfg, err := config.LoadSatellite()
	if err != nil {
		log.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, otelCfg.Enabled, log, otelShutdown); err != nil {
		log.Error("satellite stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server exited properly")
}

func run(ctx context.Context, cfg *config.SatelliteConfig, otelEnabled bool, log *slog.Logger, otelShutdown otel.ShutdownFunc) error {
	// Infrastructure
	kv, err := store.Open(ctx, cfg.StoreBackend, cfg.RedisURL, cfg.RedisPrefix, cfg.SweepInterval)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	push := repository.NewPushRepository(kv, cfg.PushTTL)
	sessions := repository.NewSessionRepository(kv)
	signals := repository.NewSignalRepository(kv, cfg.SignalTTL)

	verifier, err := infratoken.NewSSOVerifier(infratoken.SSOConfig{
		Secret: cfg.SSOSecret,
		Issuer: cfg.SSOIssuer,
		TTL:    cfg.SSOTokenTTL,
	})
	if err != nil {
		_ = kv.Close()
		return err
	}

	var access domain.AccessTokenVerifier
	if cfg.AccessSecret != "" {
		verifier, err := infratoken.NewAccessVerifier(infratoken.AccessConfig{
			Secret:   cfg.AccessSecret,
			Issuer:   cfg.AccessIssuer,
			Audience: cfg.AccessAudience,
		})
		if err != nil {
			_ = kv.Close()
			return err
		}
		access = verifier
	}

	identity := gateway.NewIdentityServiceGateway(
		gateway.NewServiceHTTPClient(cfg.IdentityTimeout),
		cfg.IdentityURL,
		cfg.ServiceSecret,
	)

	log.InfoContext(ctx, "configuration loaded",
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"identity_url", cfg.IdentityURL,
		"cookie", cfg.CookieName,
		"session_max_age", cfg.SessionMaxAge,
		"verify_access_credentials", access != nil)

	// Usecases
	injectUC := usecase.NewInjectUser(push, access, log)
	removeUC := usecase.NewRemoveUser(push, signals, log)
	getUserUC := usecase.NewGetUser(push)
	establishUC := usecase.NewEstablishSession(verifier, push, sessions, infratoken.NewRandomSessionIDs(), cfg.SessionMaxAge, log)
	getSessionUC := usecase.NewGetSession(sessions, push, log)
	verifyUC := usecase.NewVerifyToken(verifier, log)
	signoutUC := usecase.NewSignoutLocal(sessions, push, identity, cfg.IdentityTimeout, cfg.CentralSignoutURL(), log)
	checkUC := usecase.NewCheckSignout(sessions, signals, log)

	// Handlers
	cookie := adapterhandler.CookieConfig{
		Name:   cfg.CookieName,
		Domain: cfg.CookieDomain,
		MaxAge: cfg.SessionMaxAge,
		Secure: cfg.CookieSecure,
	}
	internalHandler := adapterhandler.NewInternalUserHandler(injectUC, removeUC, getUserUC, establishUC, cookie)
	sessionHandler := adapterhandler.NewSessionHandler(establishUC, getSessionUC, cookie)
	verifyHandler := adapterhandler.NewVerifyHandler(verifyUC)
	signoutHandler := adapterhandler.NewSignoutHandler(signoutUC, checkUC, cookie)
	healthHandler := adapterhandler.NewHealthHandler(cfg.ServiceName, healthChecks(kv))

	e := server.New(server.Options{ServiceName: cfg.ServiceName, OTel: otelEnabled, HSTS: cfg.HSTS})

	authRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	internalRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimit*10), cfg.RateBurst*10)

	// Public routes
	e.GET("/health", healthHandler.Handle)
	e.GET("/session", sessionHandler.HandleGet)
	e.GET("/session/establish", sessionHandler.HandleEstablish, authRL.Middleware())
	auth := e.Group("/auth", authRL.Middleware())
	auth.POST("/verify-token", verifyHandler.Handle)
	auth.POST("/signout", signoutHandler.HandleSignout)
	auth.GET("/signout-check", signoutHandler.HandleCheck)

	// Internal routes (protected by the service secret)
	internal := e.Group("/internal",
		internalRL.Middleware(),
		appmiddleware.ServiceAuth(cfg.ServiceSecret),
	)
	internal.POST("/user/inject", internalHandler.HandleInject)
	internal.DELETE("/user/remove", internalHandler.HandleRemove)
	internal.GET("/user", internalHandler.HandleGet)
	internal.POST("/session/establish", internalHandler.HandleEstablish)

	log.InfoContext(ctx, "starting satellite", "address", ":"+cfg.Port)
	return server.Run(ctx, e, cfg.Port, cfg.ShutdownTimeout,
		func(context.Context) error {
			authRL.Close()
			internalRL.Close()
			return kv.Close()
		},
		otelShutdown,
	)
}

func healthChecks(kv store.Backend) map[string]adapterhandler.Pinger {
	if p, ok := kv.(adapterhandler.Pinger); ok {
		return map[string]adapterhandler.Pinger{"store": p}
	}
	return nil
}
