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
	"sso-hub/internal/infrastructure/discovery"
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

const serviceName = "identity-service"

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		if err := server.Healthcheck(port); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	otelCfg := otel.ConfigFromEnv(serviceName)
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	log := logger.Init(serviceName, otelCfg.Enabled)

	cfg, err := config.LoadIdentity()
	if err != nil {
		log.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, otelCfg.Enabled, log, otelShutdown); err != nil {
		log.Error("identity service stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server exited properly")
}

func run(ctx context.Context, cfg *config.IdentityConfig, otelEnabled bool, log *slog.Logger, otelShutdown otel.ShutdownFunc) error {
	// Infrastructure
	kv, err := store.Open(ctx, cfg.StoreBackend, cfg.RedisURL, cfg.RedisPrefix, cfg.SweepInterval)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	central := repository.NewCentralSessionRepository(kv, cfg.CentralTTL)
	signals := repository.NewSignalRepository(kv, cfg.SignalTTL)

	registry, err := newRegistry(cfg)
	if err != nil {
		_ = kv.Close()
		return fmt.Errorf("satellite registry: %w", err)
	}

	ssoIssuer, err := infratoken.NewSSOIssuer(infratoken.SSOConfig{
		Secret: cfg.SSOSecret,
		Issuer: cfg.SSOIssuer,
		TTL:    cfg.SSOTokenTTL,
	})
	if err != nil {
		_ = kv.Close()
		return err
	}
	accessIssuer := infratoken.NewAccessIssuer(infratoken.AccessConfig{
		Secret:   cfg.AccessSecret,
		Issuer:   cfg.AccessIssuer,
		Audience: cfg.AccessAudience,
		TTL:      cfg.AccessTokenTTL,
	})

	kratos := gateway.NewKratosGateway(cfg.KratosURL, cfg.KratosAdminURL, cfg.KratosTimeout)
	satellites := gateway.NewSatelliteGateway(gateway.NewServiceHTTPClient(cfg.PropagationTimeout), cfg.ServiceSecret)

	log.InfoContext(ctx, "configuration loaded",
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"discovery", cfg.Discovery,
		"kratos_url", cfg.KratosURL,
		"propagation_timeout", cfg.PropagationTimeout,
		"cascade_hop_timeout", cfg.CascadeHopTimeout)

	// Usecases
	guard := usecase.NewRedirectGuard(registry, cfg.TrustedOrigins...)
	propagator := usecase.NewPropagator(registry, satellites, cfg.PropagationTimeout, cfg.PropagationConcurrency, log)
	ssoUC := usecase.NewSSOCallback(kratos, central, propagator, ssoIssuer, accessIssuer, guard, log)
	everywhereUC := usecase.NewSignoutEverywhere(kratos, central, signals, propagator, cfg.LogoutReturnURL, log)
	externalUC := usecase.NewSignoutExternal(central, kratos, signals, propagator, log)
	cascadeUC := usecase.NewCascade(kratos, registry, satellites, central, signals, guard, cfg.CascadeHopTimeout, log)
	checkUC := usecase.NewCheckCentralSignout(kratos, signals, log)

	// Handlers
	ssoHandler := adapterhandler.NewSSOHandler(ssoUC, cfg.LoginURL, cfg.PublicURL)
	signoutHandler := adapterhandler.NewCentralSignoutHandler(everywhereUC, externalUC, cascadeUC, checkUC)
	healthHandler := adapterhandler.NewHealthHandler(serviceName, healthChecks(kv))

	e := server.New(server.Options{ServiceName: serviceName, OTel: otelEnabled, HSTS: cfg.HSTS})

	authRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	internalRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimit*10), cfg.RateBurst*10)

	// Public routes
	e.GET("/health", healthHandler.Handle)
	e.GET("/sso/callback", ssoHandler.Handle, authRL.Middleware())
	auth := e.Group("/auth", authRL.Middleware())
	auth.POST("/signout", signoutHandler.HandleSignout)
	auth.GET("/signout-cascade", signoutHandler.HandleCascade)
	auth.GET("/signout-check", signoutHandler.HandleCheck)

	// Service-to-service routes
	e.POST("/auth/signout-external", signoutHandler.HandleExternal,
		internalRL.Middleware(),
		appmiddleware.ServiceAuth(cfg.ServiceSecret),
	)

	log.InfoContext(ctx, "starting identity service", "address", ":"+cfg.Port)
	return server.Run(ctx, e, cfg.Port, cfg.ShutdownTimeout,
		func(context.Context) error {
			authRL.Close()
			internalRL.Close()
			return kv.Close()
		},
		otelShutdown,
	)
}

func newRegistry(cfg *config.IdentityConfig) (domain.SatelliteRegistry, error) {
	if cfg.Discovery == config.DiscoveryConsul {
		return discovery.NewConsulRegistry(discovery.ConsulConfig{
			Address: cfg.ConsulAddress,
			Service: cfg.ConsulService,
			Tag:     cfg.ConsulTag,
		})
	}

	var (
		satellites []domain.Satellite
		err        error
	)
	if cfg.SatellitesFile != "" {
		satellites, err = discovery.LoadSatelliteFile(cfg.SatellitesFile)
	} else {
		satellites, err = discovery.ParseSatelliteList(cfg.Satellites)
	}
	if err != nil {
		return nil, err
	}
	return discovery.NewStaticRegistry(satellites)
}

func healthChecks(kv store.Backend) map[string]adapterhandler.Pinger {
	if p, ok := kv.(adapterhandler.Pinger); ok {
		return map[string]adapterhandler.Pinger{"store": p}
	}
	return nil
}
