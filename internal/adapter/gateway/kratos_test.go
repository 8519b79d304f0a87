package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sso-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const whoamiBody = `{
  "id": "ks-1",
  "active": true,
  "authenticated_at": "2026-10-14T10:00:00Z",
  "identity": {
    "id": "u1",
    "schema_id": "default",
    "schema_url": "http://kratos/schemas/default",
    "state": "active",
    "traits": {
      "email": "Alice@Example.com",
      "username": "alice",
      "name": {"first": "Alice", "last": "Smith"},
      "title": "Engineer"
    },
    "metadata_public": {"admin": true}
  }
}`

func TestKratosGateway_ResolveSession_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/whoami", r.URL.Path)
		assert.Contains(t, r.Header.Get("Cookie"), "ory_kratos_session=abc")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(whoamiBody))
	}))
	defer server.Close()

	gw := NewKratosGateway(server.URL, "", 5*time.Second)
	session, err := gw.ResolveSession(context.Background(), "ory_kratos_session=abc")
	require.NoError(t, err)

	assert.Equal(t, "ks-1", session.SessionID)
	assert.Equal(t, "u1", session.Record.ID)
	assert.Equal(t, "alice@example.com", session.Record.Email)
	assert.Equal(t, "alice", session.Record.Username)
	assert.Equal(t, "Alice", session.Record.FirstName)
	assert.Equal(t, "Smith", session.Record.LastName)
	assert.Equal(t, "Engineer", session.Record.Title)
	assert.True(t, session.Record.IsActive)
	assert.True(t, session.Record.IsAdmin)
	require.NotNil(t, session.Record.LastLoginAt)
	assert.Equal(t, 2026, session.Record.LastLoginAt.Year())
}

func TestKratosGateway_ResolveSession_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	gw := NewKratosGateway(server.URL, "", 5*time.Second)
	session, err := gw.ResolveSession(context.Background(), "ory_kratos_session=expired")

	assert.Nil(t, session)
	assert.True(t, errors.Is(err, domain.ErrAuthFailed))
}

func TestKratosGateway_ResolveSession_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	gw := NewKratosGateway(server.URL, "", 5*time.Second)
	_, err := gw.ResolveSession(context.Background(), "ory_kratos_session=abc")

	assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
}

func TestKratosGateway_ResolveSession_EmptyCookie(t *testing.T) {
	gw := NewKratosGateway("http://unused", "", 5*time.Second)
	session, err := gw.ResolveSession(context.Background(), "")

	assert.Nil(t, session)
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestKratosGateway_LogoutURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/self-service/logout/browser", r.URL.Path)
		assert.Equal(t, "https://home.example.com/", r.URL.Query().Get("return_to"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"logout_token":"tok","logout_url":"http://kratos/self-service/logout?token=tok"}`))
	}))
	defer server.Close()

	gw := NewKratosGateway(server.URL, "", 5*time.Second)
	logoutURL, err := gw.LogoutURL(context.Background(), "ory_kratos_session=abc", "https://home.example.com/")

	require.NoError(t, err)
	assert.Equal(t, "http://kratos/self-service/logout?token=tok", logoutURL)
}

func TestKratosGateway_RevokeSessions(t *testing.T) {
	var called bool
	admin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/admin/identities/u1/sessions", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer admin.Close()

	gw := NewKratosGateway("http://unused", admin.URL, 5*time.Second)
	err := gw.RevokeSessions(context.Background(), "u1")

	assert.NoError(t, err)
	assert.True(t, called)
}

func TestKratosGateway_RevokeSessions_AdminNotConfigured(t *testing.T) {
	gw := NewKratosGateway("http://unused", "", 5*time.Second)
	err := gw.RevokeSessions(context.Background(), "u1")

	assert.True(t, errors.Is(err, domain.ErrProviderNotConfigured))
}
