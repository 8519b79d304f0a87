package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sso-hub/internal/domain"

	kratos "github.com/ory/kratos-client-go"
)

// KratosGateway implements domain.IdentityProvider on top of Ory Kratos.
type KratosGateway struct {
	client      *kratos.APIClient
	adminClient *kratos.APIClient
}

// NewKratosGateway creates a Kratos gateway with tuned HTTP transport.
// An empty adminBaseURL disables session revocation.
func NewKratosGateway(baseURL, adminBaseURL string, timeout time.Duration) *KratosGateway {
	httpClient := NewServiceHTTPClient(timeout)

	g := &KratosGateway{client: newKratosClient(baseURL, httpClient)}
	if adminBaseURL != "" {
		g.adminClient = newKratosClient(adminBaseURL, httpClient)
	}
	return g
}

func newKratosClient(baseURL string, httpClient *http.Client) *kratos.APIClient {
	configuration := kratos.NewConfiguration()
	configuration.Servers = []kratos.ServerConfiguration{
		{URL: baseURL},
	}
	configuration.HTTPClient = httpClient
	return kratos.NewAPIClient(configuration)
}

// ResolveSession validates a browser cookie header and maps the Kratos identity to a record.
func (g *KratosGateway) ResolveSession(ctx context.Context, cookie string) (*domain.ProviderSession, error) {
	if cookie == "" {
		return nil, domain.ErrSessionNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	session, resp, err := g.client.FrontendAPI.ToSession(ctx).Cookie(cookie).Execute()
	if err != nil {
		if resp != nil {
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return nil, domain.ErrAuthFailed
			}
			return nil, fmt.Errorf("%w: kratos returned status %d", domain.ErrProviderUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}

	if session.Active != nil && !*session.Active {
		return nil, domain.ErrSessionInactive
	}

	if session.Identity == nil {
		return nil, domain.ErrMissingIdentity
	}

	traits, _ := session.Identity.Traits.(map[string]interface{})
	record := recordFromTraits(session.Identity.Id, traits)
	if record.Email == "" {
		return nil, domain.ErrMissingIdentity
	}
	state := string(session.Identity.GetState())
	record.IsActive = state == "" || state == "active"
	if meta, ok := session.Identity.GetMetadataPublic().(map[string]interface{}); ok {
		record.IsAdmin, _ = meta["admin"].(bool)
	}

	result := &domain.ProviderSession{
		SessionID: session.Id,
		Record:    record,
	}
	if session.AuthenticatedAt != nil {
		authenticatedAt := *session.AuthenticatedAt
		result.AuthenticatedAt = authenticatedAt
		result.Record.LastLoginAt = &authenticatedAt
	}
	return result, nil
}

// recordFromTraits maps the identity schema traits onto an IdentityRecord.
func recordFromTraits(id string, traits map[string]interface{}) domain.IdentityRecord {
	record := domain.IdentityRecord{
		ID:        id,
		Email:     domain.NormalizeEmail(stringTrait(traits, "email")),
		Username:  stringTrait(traits, "username"),
		Title:     stringTrait(traits, "title"),
		Bio:       stringTrait(traits, "bio"),
		Location:  stringTrait(traits, "location"),
		AvatarURL: stringTrait(traits, "avatar"),
	}
	if name, ok := traits["name"].(map[string]interface{}); ok {
		record.FirstName = stringTrait(name, "first")
		record.LastName = stringTrait(name, "last")
	}
	return record
}

func stringTrait(traits map[string]interface{}, key string) string {
	if traits == nil {
		return ""
	}
	if v, ok := traits[key].(string); ok {
		return v
	}
	return ""
}

// LogoutURL creates a browser logout flow and returns the URL the browser must visit.
func (g *KratosGateway) LogoutURL(ctx context.Context, cookie, returnTo string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req := g.client.FrontendAPI.CreateBrowserLogoutFlow(ctx).Cookie(cookie)
	if returnTo != "" {
		req = req.ReturnTo(returnTo)
	}
	flow, resp, err := req.Execute()
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return "", domain.ErrAuthFailed
		}
		return "", fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	return flow.LogoutUrl, nil
}

// RevokeSessions deletes every Kratos session of the identity via the admin API.
func (g *KratosGateway) RevokeSessions(ctx context.Context, identityID string) error {
	if g.adminClient == nil {
		return domain.ErrProviderNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	resp, err := g.adminClient.IdentityAPI.DeleteIdentitySessions(ctx, identityID).Execute()
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	return nil
}
