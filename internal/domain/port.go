package domain

import (
	"context"
	"time"
)

// KeyValueStore is the storage abstraction behind every session-related map.
// Mutations are single-key and last-write-wins.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
}

// TokenIssuer mints short-lived SSO handoff tokens.
type TokenIssuer interface {
	Issue(identity *IdentityRecord) (string, error)
}

// TokenVerifier validates SSO handoff tokens.
type TokenVerifier interface {
	Verify(token string) (*SSOClaims, error)
}

// AccessTokenIssuer mints the upstream bearer credential carried in pushed records.
type AccessTokenIssuer interface {
	IssueAccessToken(identity *IdentityRecord, sessionID string) (string, error)
}

// AccessTokenVerifier validates the upstream bearer credential.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (*AccessClaims, error)
}

// SessionIDGenerator produces opaque, unguessable session ids.
type SessionIDGenerator interface {
	NewSessionID() (string, error)
}

// PushStore holds identities pushed by the identity service, keyed by email.
type PushStore interface {
	Get(ctx context.Context, email string) (*IdentityRecord, error)
	Put(ctx context.Context, record *IdentityRecord) error
	Delete(ctx context.Context, email string) (bool, error)
}

// SessionStore maps session ids to session entries.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*SessionEntry, error)
	Put(ctx context.Context, entry *SessionEntry) error
	Delete(ctx context.Context, sessionID string) (bool, error)
}

// SignalStore holds pending signout signals, keyed by email.
type SignalStore interface {
	Mark(ctx context.Context, signal SignoutSignal) error
	Consume(ctx context.Context, email string) (*SignoutSignal, bool, error)
}

// CentralSessionStore tracks the identity service's active sessions, keyed by email.
type CentralSessionStore interface {
	Get(ctx context.Context, email string) (*CentralSession, error)
	Put(ctx context.Context, session *CentralSession) error
	Delete(ctx context.Context, email string) (bool, error)
}

// SatelliteRegistry lists the satellites known to the identity service.
type SatelliteRegistry interface {
	Satellites(ctx context.Context) ([]Satellite, error)
}

// SatelliteClient performs service-to-service calls against one satellite.
type SatelliteClient interface {
	Inject(ctx context.Context, satellite Satellite, record *IdentityRecord) (SatelliteReply, error)
	Remove(ctx context.Context, satellite Satellite, email string) (SatelliteReply, error)
}

// IdentityServiceClient is the satellite's view of the identity service.
type IdentityServiceClient interface {
	SignoutExternal(ctx context.Context, email string) (bool, error)
}

// IdentityProvider authenticates browsers for the identity service.
type IdentityProvider interface {
	ResolveSession(ctx context.Context, cookie string) (*ProviderSession, error)
	LogoutURL(ctx context.Context, cookie, returnTo string) (string, error)
	RevokeSessions(ctx context.Context, identityID string) error
}
