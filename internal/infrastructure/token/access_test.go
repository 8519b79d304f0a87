package token

import (
	"errors"
	"testing"
	"time"

	"sso-hub/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccessSecret = "this-is-a-valid-access-token-secret-32-chars-long"

func testAccessConfig() AccessConfig {
	return AccessConfig{
		Secret:   testAccessSecret,
		Issuer:   "identity-service",
		Audience: "satellites",
		TTL:      time.Hour,
	}
}

func TestAccessIssuer_IssueAccessToken(t *testing.T) {
	issuer := NewAccessIssuer(testAccessConfig())
	identity := &domain.IdentityRecord{ID: "user-123", Email: "Test@Example.com", Username: "tester", IsAdmin: true}

	tokenStr, err := issuer.IssueAccessToken(identity, "kratos-session-abc")
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(tokenStr, &accessClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(testAccessSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)

	claims := parsed.Claims.(*accessClaims)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "tester", claims.Username)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "kratos-session-abc", claims.Sid)
	assert.NotEmpty(t, claims.ID)
	assert.Contains(t, claims.Audience, "satellites")
}

func TestAccessIssuer_RoleFollowsRecord(t *testing.T) {
	issuer := NewAccessIssuer(testAccessConfig())
	verifier, err := NewAccessVerifier(testAccessConfig())
	require.NoError(t, err)

	tokenStr, err := issuer.IssueAccessToken(&domain.IdentityRecord{ID: "u1", Email: "a@x.com"}, "s1")
	require.NoError(t, err)

	claims, err := verifier.VerifyAccessToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.Equal(t, "s1", claims.SessionID)
}

func TestAccessIssuer_RejectsIncompleteInput(t *testing.T) {
	issuer := NewAccessIssuer(testAccessConfig())

	_, err := issuer.IssueAccessToken(&domain.IdentityRecord{ID: "u1"}, "")
	assert.True(t, errors.Is(err, domain.ErrTokenGeneration))

	_, err = issuer.IssueAccessToken(&domain.IdentityRecord{Email: "a@x.com"}, "s1")
	assert.True(t, errors.Is(err, domain.ErrTokenGeneration))
}

func TestAccessIssuer_MissingSecret(t *testing.T) {
	issuer := NewAccessIssuer(AccessConfig{TTL: time.Hour})

	tokenStr, err := issuer.IssueAccessToken(&domain.IdentityRecord{ID: "u1"}, "s")
	assert.Empty(t, tokenStr)
	assert.True(t, errors.Is(err, domain.ErrSigningSecretMissing))

	_, err = NewAccessVerifier(AccessConfig{})
	assert.True(t, errors.Is(err, domain.ErrSigningSecretMissing))
}

func TestAccessVerifier_Rejects(t *testing.T) {
	identity := &domain.IdentityRecord{ID: "u1", Email: "a@x.com"}
	valid, err := NewAccessIssuer(testAccessConfig()).IssueAccessToken(identity, "s1")
	require.NoError(t, err)

	otherAudience := testAccessConfig()
	otherAudience.Audience = "billing"
	foreign, err := NewAccessIssuer(otherAudience).IssueAccessToken(identity, "s1")
	require.NoError(t, err)

	otherSecret := testAccessConfig()
	otherSecret.Secret = "another-secret-that-is-long-enough-for-hs256"
	forged, err := NewAccessIssuer(otherSecret).IssueAccessToken(identity, "s1")
	require.NoError(t, err)

	verifier, err := NewAccessVerifier(testAccessConfig())
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(valid)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong audience", foreign},
		{"wrong secret", forged},
		{"garbage", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.VerifyAccessToken(tt.token)
			assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
		})
	}
}

func TestAccessVerifier_Expired(t *testing.T) {
	issuer := NewAccessIssuer(testAccessConfig())
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tokenStr, err := issuer.IssueAccessToken(&domain.IdentityRecord{ID: "u1", Email: "a@x.com"}, "s1")
	require.NoError(t, err)

	verifier, err := NewAccessVerifier(testAccessConfig())
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(tokenStr)
	assert.True(t, errors.Is(err, domain.ErrTokenExpired))
}

func TestRandomSessionIDs_Unique(t *testing.T) {
	gen := NewRandomSessionIDs()

	seen := make(map[string]struct{})
	for range 100 {
		id, err := gen.NewSessionID()
		assert.NoError(t, err)
		assert.Len(t, id, 43)
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}
