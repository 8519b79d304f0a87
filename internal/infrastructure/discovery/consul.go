package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"sso-hub/internal/domain"

	"github.com/hashicorp/consul/api"
)

// ConsulConfig selects which Consul services count as satellites.
type ConsulConfig struct {
	Address string
	Service string
	Tag     string
}

// ConsulRegistry discovers healthy satellites from the Consul catalog.
// Implements domain.SatelliteRegistry.
type ConsulRegistry struct {
	health *api.Health
	cfg    ConsulConfig
}

// NewConsulRegistry creates a registry backed by the Consul agent at cfg.Address.
func NewConsulRegistry(cfg ConsulConfig) (*ConsulRegistry, error) {
	clientCfg := api.DefaultConfig()
	if cfg.Address != "" {
		clientCfg.Address = cfg.Address
	}
	client, err := api.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}
	return &ConsulRegistry{health: client.Health(), cfg: cfg}, nil
}

// Satellites returns every passing instance of the configured service.
// Instances may override the URL scheme, display name and browser-facing
// address with the "scheme", "satellite" and "public_url" service meta keys.
func (r *ConsulRegistry) Satellites(ctx context.Context) ([]domain.Satellite, error) {
	q := (&api.QueryOptions{}).WithContext(ctx)
	entries, _, err := r.health.Service(r.cfg.Service, r.cfg.Tag, true, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRegistryUnavailable, err)
	}

	out := make([]domain.Satellite, 0, len(entries))
	for _, entry := range entries {
		if entry.Service == nil {
			continue
		}
		host := entry.Service.Address
		if host == "" && entry.Node != nil {
			host = entry.Node.Address
		}
		if host == "" {
			continue
		}

		scheme := "http"
		name := entry.Service.ID
		if v := entry.Service.Meta["scheme"]; v != "" {
			scheme = v
		}
		if v := entry.Service.Meta["satellite"]; v != "" {
			name = v
		}

		base := scheme + "://" + net.JoinHostPort(host, strconv.Itoa(entry.Service.Port))
		public := strings.TrimRight(entry.Service.Meta["public_url"], "/")
		if public == "" {
			public = base
		}
		out = append(out, domain.Satellite{Name: name, BaseURL: base, PublicURL: public})
	}
	return out, nil
}
