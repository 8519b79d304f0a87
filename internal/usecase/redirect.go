package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"sso-hub/internal/domain"
)

// RedirectGuard only lets browsers be sent to the public origins of known
// satellites or to the identity service itself.
type RedirectGuard struct {
	registry domain.SatelliteRegistry
	trusted  []string
}

// NewRedirectGuard creates a guard. trusted lists extra allowed base URLs.
func NewRedirectGuard(registry domain.SatelliteRegistry, trusted ...string) *RedirectGuard {
	origins := make([]string, 0, len(trusted))
	for _, t := range trusted {
		if o, ok := originOf(t); ok {
			origins = append(origins, o)
		}
	}
	return &RedirectGuard{registry: registry, trusted: origins}
}

// Validate returns raw unchanged when its origin is allowed, domain.ErrInvalidRedirect otherwise.
func (g *RedirectGuard) Validate(ctx context.Context, raw string) (string, error) {
	origin, ok := originOf(raw)
	if !ok {
		return "", fmt.Errorf("%w: malformed url", domain.ErrInvalidRedirect)
	}

	for _, t := range g.trusted {
		if t == origin {
			return raw, nil
		}
	}

	satellites, err := g.registry.Satellites(ctx)
	if err != nil {
		return "", err
	}
	for _, sat := range satellites {
		if o, ok := originOf(sat.BrowserURL()); ok && o == origin {
			return raw, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrInvalidRedirect, origin)
}

// originOf returns scheme://host for absolute http(s) URLs.
func originOf(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.User != nil {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	return scheme + "://" + strings.ToLower(u.Host), true
}

// withQuery returns raw with key=value added to its query string.
func withQuery(raw, key, value string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidRedirect, err)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
