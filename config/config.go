package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	DiscoveryStatic = "static"
	DiscoveryConsul = "consul"
)

// Common holds settings shared by both binaries.
type Common struct {
	Port            string        // HTTP listen port
	ServiceSecret   string        // X-Service-Secret for internal calls
	SSOSecret       string        // HS256 key for handoff tokens
	SSOIssuer       string        // iss claim of handoff tokens
	SSOTokenTTL     time.Duration // lifetime of handoff tokens
	StoreBackend    string        // memory or redis
	RedisURL        string        // redis:// URL when StoreBackend is redis
	RedisPrefix     string        // key namespace inside Redis
	SweepInterval   time.Duration // memory store expiry sweep
	SignalTTL       time.Duration // lifetime of signout signals
	RateLimit       float64       // requests per second per IP on public auth routes
	RateBurst       int
	HSTS            bool
	ShutdownTimeout time.Duration
}

// IdentityConfig configures cmd/identity-service.
type IdentityConfig struct {
	Common
	PublicURL              string // browser-facing base URL of this service
	KratosURL              string // Kratos public API
	KratosAdminURL         string // Kratos admin API, empty disables session revocation
	KratosTimeout          time.Duration
	LoginURL               string // browser login page of the identity provider
	LogoutReturnURL        string // where the provider sends the browser after logout
	AccessSecret           string
	AccessIssuer           string
	AccessAudience         string
	AccessTokenTTL         time.Duration
	CentralTTL             time.Duration
	Discovery              string // static or consul
	Satellites             string // name=url[|public],...
	SatellitesFile         string // YAML registry, overrides Satellites
	ConsulAddress          string
	ConsulService          string
	ConsulTag              string
	TrustedOrigins         []string // extra redirect origins besides the satellites
	PropagationTimeout     time.Duration
	PropagationConcurrency int
	CascadeHopTimeout      time.Duration
}

// SatelliteConfig configures cmd/satellite.
type SatelliteConfig struct {
	Common
	ServiceName       string
	PublicURL         string // browser-facing base URL of this satellite
	IdentityURL       string // identity service, internal address
	IdentityPublicURL string // identity service, browser-facing address
	IdentityTimeout   time.Duration
	PushTTL           time.Duration
	CookieName        string
	CookieDomain      string
	CookieSecure      bool
	SessionMaxAge     time.Duration
	// Optional; when set, pushed access credentials are verified on inject.
	AccessSecret   string
	AccessIssuer   string
	AccessAudience string
}

// LoadIdentity reads the identity service configuration from the environment.
func LoadIdentity() (*IdentityConfig, error) {
	loadDotEnv()

	common, err := loadCommon("8080", "identity")
	if err != nil {
		return nil, err
	}
	cfg := &IdentityConfig{
		Common:          common,
		PublicURL:       strings.TrimRight(getEnv("IDENTITY_PUBLIC_URL", "http://localhost:8080"), "/"),
		KratosURL:       getEnv("KRATOS_URL", "http://kratos:4433"),
		KratosAdminURL:  getEnv("KRATOS_ADMIN_URL", ""),
		LoginURL:        getEnv("LOGIN_URL", "http://localhost:4455/login"),
		LogoutReturnURL: getEnv("LOGOUT_RETURN_URL", ""),
		AccessSecret:    getEnv("ACCESS_TOKEN_SECRET", ""),
		AccessIssuer:    getEnv("ACCESS_TOKEN_ISSUER", "identity-service"),
		AccessAudience:  getEnv("ACCESS_TOKEN_AUDIENCE", "satellites"),
		Discovery:       getEnv("SATELLITE_DISCOVERY", DiscoveryStatic),
		Satellites:      getEnv("SATELLITES", ""),
		SatellitesFile:  getEnv("SATELLITES_FILE", ""),
		ConsulAddress:   getEnv("CONSUL_HTTP_ADDR", ""),
		ConsulService:   getEnv("CONSUL_SATELLITE_SERVICE", "satellite"),
		ConsulTag:       getEnv("CONSUL_SATELLITE_TAG", ""),
		TrustedOrigins:  splitList(getEnv("TRUSTED_REDIRECT_ORIGINS", "")),
	}

	var errs []error
	cfg.KratosTimeout, errs = duration("KRATOS_TIMEOUT", 5*time.Second, errs)
	cfg.AccessTokenTTL, errs = duration("ACCESS_TOKEN_TTL", 15*time.Minute, errs)
	cfg.CentralTTL, errs = duration("CENTRAL_SESSION_TTL", 7*24*time.Hour, errs)
	cfg.PropagationTimeout, errs = duration("PROPAGATION_TIMEOUT", 3*time.Second, errs)
	cfg.CascadeHopTimeout, errs = duration("CASCADE_HOP_TIMEOUT", 1200*time.Millisecond, errs)
	cfg.PropagationConcurrency, errs = integer("PROPAGATION_CONCURRENCY", 8, errs)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the identity service configuration.
func (c *IdentityConfig) Validate() error {
	errs := c.Common.validate()
	if c.AccessSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET cannot be empty"))
	}
	if c.KratosURL == "" {
		errs = append(errs, errors.New("KRATOS_URL cannot be empty"))
	}
	switch c.Discovery {
	case DiscoveryStatic:
		if c.Satellites == "" && c.SatellitesFile == "" {
			errs = append(errs, errors.New("SATELLITES or SATELLITES_FILE must be set for static discovery"))
		}
	case DiscoveryConsul:
		if c.ConsulService == "" {
			errs = append(errs, errors.New("CONSUL_SATELLITE_SERVICE cannot be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SATELLITE_DISCOVERY %q", c.Discovery))
	}
	if c.PropagationTimeout <= 0 || c.CascadeHopTimeout <= 0 {
		errs = append(errs, errors.New("PROPAGATION_TIMEOUT and CASCADE_HOP_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// LoadSatellite reads a satellite's configuration from the environment.
func LoadSatellite() (*SatelliteConfig, error) {
	loadDotEnv()

	name := getEnv("SERVICE_NAME", "satellite")
	common, err := loadCommon("8081", name)
	if err != nil {
		return nil, err
	}
	cfg := &SatelliteConfig{
		Common:            common,
		ServiceName:       name,
		PublicURL:         strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8081"), "/"),
		IdentityURL:       strings.TrimRight(getEnv("IDENTITY_SERVICE_URL", "http://identity-service:8080"), "/"),
		IdentityPublicURL: strings.TrimRight(getEnv("IDENTITY_PUBLIC_URL", "http://localhost:8080"), "/"),
		CookieName:        getEnv("SESSION_COOKIE_NAME", name+"_session"),
		CookieDomain:      getEnv("SESSION_COOKIE_DOMAIN", ""),
		CookieSecure:      getEnv("SESSION_COOKIE_SECURE", "true") == "true",
		AccessSecret:      getEnv("ACCESS_TOKEN_SECRET", ""),
		AccessIssuer:      getEnv("ACCESS_TOKEN_ISSUER", "identity-service"),
		AccessAudience:    getEnv("ACCESS_TOKEN_AUDIENCE", "satellites"),
	}

	var errs []error
	cfg.IdentityTimeout, errs = duration("IDENTITY_SERVICE_TIMEOUT", 2*time.Second, errs)
	cfg.PushTTL, errs = duration("PUSH_TTL", 7*24*time.Hour, errs)
	cfg.SessionMaxAge, errs = duration("SESSION_MAX_AGE", 7*24*time.Hour, errs)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the satellite configuration.
func (c *SatelliteConfig) Validate() error {
	errs := c.Common.validate()
	if c.IdentityURL == "" {
		errs = append(errs, errors.New("IDENTITY_SERVICE_URL cannot be empty"))
	}
	if c.CookieName == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME cannot be empty"))
	}
	if c.SessionMaxAge <= 0 {
		errs = append(errs, errors.New("SESSION_MAX_AGE must be positive"))
	}
	return errors.Join(errs...)
}

// CentralSignoutURL is where a satellite sends the browser to finish a signout
// the identity service could not be told about.
func (c *SatelliteConfig) CentralSignoutURL() string {
	return c.IdentityPublicURL + "/auth/signout-cascade?returnUrl=" + url.QueryEscape(c.PublicURL)
}

func loadCommon(defaultPort, prefix string) (Common, error) {
	c := Common{
		Port:          getEnv("PORT", defaultPort),
		ServiceSecret: getEnv("SERVICE_SECRET", ""),
		SSOSecret:     getEnv("SSO_TOKEN_SECRET", ""),
		SSOIssuer:     getEnv("SSO_TOKEN_ISSUER", "identity-service"),
		StoreBackend:  getEnv("STORE_BACKEND", StoreMemory),
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPrefix:   getEnv("REDIS_PREFIX", prefix),
		HSTS:          getEnv("HSTS_ENABLED", "false") == "true",
	}

	var errs []error
	c.SSOTokenTTL, errs = duration("SSO_TOKEN_TTL", 5*time.Minute, errs)
	c.SweepInterval, errs = duration("STORE_SWEEP_INTERVAL", time.Minute, errs)
	c.SignalTTL, errs = duration("SIGNAL_TTL", 24*time.Hour, errs)
	c.ShutdownTimeout, errs = duration("SHUTDOWN_TIMEOUT", 10*time.Second, errs)
	c.RateBurst, errs = integer("RATE_LIMIT_BURST", 20, errs)

	c.RateLimit = 10
	if v := getEnv("RATE_LIMIT_RPS", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_RPS format: %w", err))
		}
		c.RateLimit = f
	}
	return c, errors.Join(errs...)
}

func (c *Common) validate() []error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT cannot be empty"))
	}
	if c.ServiceSecret == "" {
		errs = append(errs, errors.New("SERVICE_SECRET cannot be empty"))
	}
	if c.SSOSecret == "" {
		errs = append(errs, errors.New("SSO_TOKEN_SECRET cannot be empty"))
	}
	if c.SSOTokenTTL <= 0 {
		errs = append(errs, errors.New("SSO_TOKEN_TTL must be positive"))
	}
	switch c.StoreBackend {
	case StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL cannot be empty when STORE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	return errs
}

// loadDotEnv reads .env when present. Real environment variables win.
func loadDotEnv() {
	path := getEnv("ENV_FILE", ".env")
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

func duration(key string, fallback time.Duration, errs []error) (time.Duration, []error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, errs
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, append(errs, fmt.Errorf("invalid %s format: %w", key, err))
	}
	return d, errs
}

func integer(key string, fallback int, errs []error) (int, []error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, errs
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, append(errs, fmt.Errorf("invalid %s format: %w", key, err))
	}
	return n, errs
}

func splitList(raw string) []string {
	var out []string
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a fallback value.
// KEY_FILE, when set and readable, takes precedence over KEY.
func getEnv(key, fallback string) string {
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
