package domain

import "time"

// SSOClaims is the decoded payload of a short-lived handoff token.
type SSOClaims struct {
	Email     string
	UserID    string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AccessClaims is the decoded upstream bearer credential.
type AccessClaims struct {
	Subject   string
	Email     string
	Username  string
	Role      string
	SessionID string
	TokenID   string
	ExpiresAt time.Time
}

// SessionEntry maps an opaque session id (the cookie value) to exactly one record.
type SessionEntry struct {
	ID        string         `json:"id"`
	Record    IdentityRecord `json:"record"`
	CreatedAt time.Time      `json:"createdAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// Expired reports whether the entry is past its lifetime at now.
func (s *SessionEntry) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SignoutSignal marks a user that must be logged out locally on the next check.
type SignoutSignal struct {
	Email     string    `json:"email"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Satellite is a service that receives pushed identities.
// BaseURL is the service-to-service address; PublicURL is where browsers reach it.
type Satellite struct {
	Name      string `json:"name" yaml:"name"`
	BaseURL   string `json:"baseUrl" yaml:"url"`
	PublicURL string `json:"publicUrl,omitempty" yaml:"public_url"`
}

// BrowserURL returns PublicURL, or BaseURL when no public address is set.
func (s Satellite) BrowserURL() string {
	if s.PublicURL != "" {
		return s.PublicURL
	}
	return s.BaseURL
}
