package domain

import (
	"strings"
	"time"
)

// IdentityRecord is the user snapshot the identity service pushes to satellites.
// Email is the unique key everywhere outside the identity provider.
type IdentityRecord struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username,omitempty"`
	FirstName   string     `json:"firstName,omitempty"`
	LastName    string     `json:"lastName,omitempty"`
	Title       string     `json:"title,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Location    string     `json:"location,omitempty"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	IsActive    bool       `json:"isActive"`
	IsAdmin     bool       `json:"isAdmin"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	AccessToken string     `json:"accessToken,omitempty"`
}

// Roles carried in the upstream access credential.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Role derives the credential role from the record's admin flag.
func (r IdentityRecord) Role() string {
	if r.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Public returns a copy without the upstream access credential.
func (r IdentityRecord) Public() IdentityRecord {
	r.AccessToken = ""
	return r
}

// PreserveAccessToken keeps the previously stored credential when an
// incoming push omits one. Every other field is overwritten as a whole.
func (r *IdentityRecord) PreserveAccessToken(existing *IdentityRecord) {
	if r.AccessToken == "" && existing != nil {
		r.AccessToken = existing.AccessToken
	}
}

// NormalizeEmail lower-cases and trims an email so it can be used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProviderSession is an authenticated session resolved from the identity provider.
type ProviderSession struct {
	SessionID       string
	Record          IdentityRecord
	AuthenticatedAt time.Time
}

// CentralSession tracks the identity service's active session for a user.
type CentralSession struct {
	Email             string    `json:"email"`
	UserID            string    `json:"userId"`
	ProviderSessionID string    `json:"providerSessionId"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Equal reports whether both records carry the same values.
func (r IdentityRecord) Equal(o IdentityRecord) bool {
	if (r.LastLoginAt == nil) != (o.LastLoginAt == nil) {
		return false
	}
	if r.LastLoginAt != nil && !r.LastLoginAt.Equal(*o.LastLoginAt) {
		return false
	}
	r.LastLoginAt, o.LastLoginAt = nil, nil
	return r == o
}
