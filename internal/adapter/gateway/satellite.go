package gateway

import (
	"context"
	"fmt"
	"net/http"

	"sso-hub/internal/domain"
)

// SatelliteGateway calls satellite internal endpoints.
// Implements domain.SatelliteClient.
type SatelliteGateway struct {
	client *http.Client
	secret string
}

// NewSatelliteGateway creates a gateway authenticating with the shared service secret.
func NewSatelliteGateway(client *http.Client, secret string) *SatelliteGateway {
	return &SatelliteGateway{client: client, secret: secret}
}

// injectResponse mirrors the satellite inject endpoint response.
type injectResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

// removeRequest is the body of the satellite remove endpoint.
type removeRequest struct {
	Email string `json:"email"`
}

// removeResponse mirrors the satellite remove endpoint response.
type removeResponse struct {
	Success bool `json:"success"`
	Existed bool `json:"existed"`
}

// Inject pushes the full record to the satellite.
func (g *SatelliteGateway) Inject(ctx context.Context, satellite domain.Satellite, record *domain.IdentityRecord) (domain.SatelliteReply, error) {
	var resp injectResponse
	status, err := serviceCall(ctx, g.client, http.MethodPost, satellite.BaseURL+"/internal/user/inject", g.secret, record, &resp)
	reply := domain.SatelliteReply{Status: status}
	if err != nil {
		return reply, fmt.Errorf("%w: %s: %w", domain.ErrSatelliteUnavailable, satellite.Name, err)
	}
	if !resp.Success {
		return reply, fmt.Errorf("%w: %s: inject not acknowledged", domain.ErrSatelliteUnavailable, satellite.Name)
	}
	return reply, nil
}

// Remove deletes the pushed record for email on the satellite.
func (g *SatelliteGateway) Remove(ctx context.Context, satellite domain.Satellite, email string) (domain.SatelliteReply, error) {
	var resp removeResponse
	status, err := serviceCall(ctx, g.client, http.MethodDelete, satellite.BaseURL+"/internal/user/remove", g.secret, removeRequest{Email: email}, &resp)
	if err != nil {
		return domain.SatelliteReply{Status: status}, fmt.Errorf("%w: %s: %w", domain.ErrSatelliteUnavailable, satellite.Name, err)
	}
	return domain.SatelliteReply{Status: status, Existed: resp.Existed}, nil
}
