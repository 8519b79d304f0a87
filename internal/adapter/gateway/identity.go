package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"sso-hub/internal/domain"
)

// IdentityServiceGateway is the satellite's client for the identity service.
// Implements domain.IdentityServiceClient.
type IdentityServiceGateway struct {
	client  *http.Client
	baseURL string
	secret  string
}

// NewIdentityServiceGateway creates a gateway for the identity service at baseURL.
func NewIdentityServiceGateway(client *http.Client, baseURL, secret string) *IdentityServiceGateway {
	return &IdentityServiceGateway{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
	}
}

type signoutExternalRequest struct {
	UserEmail string `json:"userEmail"`
}

type signoutExternalResponse struct {
	Success                bool `json:"success"`
	RequiresCentralSignout bool `json:"requiresCentralSignout"`
}

// SignoutExternal tells the identity service that email logged out on a satellite.
// It reports whether the browser must also end its central session.
func (g *IdentityServiceGateway) SignoutExternal(ctx context.Context, email string) (bool, error) {
	var resp signoutExternalResponse
	_, err := serviceCall(ctx, g.client, http.MethodPost, g.baseURL+"/auth/signout-external", g.secret,
		signoutExternalRequest{UserEmail: email}, &resp)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrIdentityServiceUnavailable, err)
	}
	return resp.RequiresCentralSignout, nil
}
