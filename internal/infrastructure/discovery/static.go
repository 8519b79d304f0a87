// Package discovery lists the satellites the identity service propagates to.
package discovery

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"sso-hub/internal/domain"

	"gopkg.in/yaml.v3"
)

// StaticRegistry serves a fixed satellite list.
// Implements domain.SatelliteRegistry.
type StaticRegistry struct {
	satellites []domain.Satellite
}

// NewStaticRegistry validates and stores satellites in the given order.
func NewStaticRegistry(satellites []domain.Satellite) (*StaticRegistry, error) {
	out := make([]domain.Satellite, 0, len(satellites))
	seen := make(map[string]struct{}, len(satellites))
	for _, s := range satellites {
		s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
		if err := validateBaseURL(s.BaseURL); err != nil {
			return nil, fmt.Errorf("satellite %q: %w", s.Name, err)
		}
		s.PublicURL = strings.TrimRight(strings.TrimSpace(s.PublicURL), "/")
		if s.PublicURL == "" {
			s.PublicURL = s.BaseURL
		} else if err := validateBaseURL(s.PublicURL); err != nil {
			return nil, fmt.Errorf("satellite %q public url: %w", s.Name, err)
		}
		if s.Name == "" {
			s.Name = s.BaseURL
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("duplicate satellite name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
		out = append(out, s)
	}
	return &StaticRegistry{satellites: out}, nil
}

// ParseSatelliteList parses "name=url,name=url|public". A bare url uses itself
// as the name; the optional "|public" part is the browser-facing address.
func ParseSatelliteList(raw string) ([]domain.Satellite, error) {
	var out []domain.Satellite
	for item := range strings.SplitSeq(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, base, ok := strings.Cut(item, "=")
		if !ok {
			base, name = name, ""
		}
		base, public, _ := strings.Cut(base, "|")
		out = append(out, domain.Satellite{
			Name:      strings.TrimSpace(name),
			BaseURL:   strings.TrimSpace(base),
			PublicURL: strings.TrimSpace(public),
		})
	}
	return out, nil
}

// registryFile is the YAML layout of SATELLITES_FILE.
type registryFile struct {
	Satellites []domain.Satellite `yaml:"satellites"`
}

// LoadSatelliteFile reads satellites from a YAML file.
func LoadSatelliteFile(path string) ([]domain.Satellite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read satellites file: %w", err)
	}
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse satellites file: %w", err)
	}
	return f.Satellites, nil
}

// Satellites returns a copy of the configured list.
func (r *StaticRegistry) Satellites(_ context.Context) ([]domain.Satellite, error) {
	out := make([]domain.Satellite, len(r.satellites))
	copy(out, r.satellites)
	return out, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must be http or https: %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url has no host: %q", raw)
	}
	return nil
}
