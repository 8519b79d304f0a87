package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"sso-hub/internal/domain"
	"sso-hub/internal/infrastructure/repository"
	"sso-hub/internal/infrastructure/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stores bundles the real repositories over one in-memory KV store.
type stores struct {
	kv       *store.MemoryStore
	push     *repository.PushRepository
	sessions *repository.SessionRepository
	signals  *repository.SignalRepository
	central  *repository.CentralSessionRepository
}

func newStores(t *testing.T) *stores {
	t.Helper()
	kv := store.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = kv.Close() })
	return &stores{
		kv:       kv,
		push:     repository.NewPushRepository(kv, 0),
		sessions: repository.NewSessionRepository(kv),
		signals:  repository.NewSignalRepository(kv, time.Hour),
		central:  repository.NewCentralSessionRepository(kv, time.Hour),
	}
}

// mockVerifier implements domain.TokenVerifier for testing.
type mockVerifier struct {
	claims *domain.SSOClaims
	err    error
	token  string
}

func (m *mockVerifier) Verify(token string) (*domain.SSOClaims, error) {
	m.token = token
	return m.claims, m.err
}

// mockIssuer implements domain.TokenIssuer for testing.
type mockIssuer struct {
	token string
	err   error
}

func (m *mockIssuer) Issue(_ *domain.IdentityRecord) (string, error) {
	return m.token, m.err
}

// mockAccessIssuer implements domain.AccessTokenIssuer for testing.
type mockAccessIssuer struct {
	token     string
	err       error
	sessionID string
}

func (m *mockAccessIssuer) IssueAccessToken(_ *domain.IdentityRecord, sessionID string) (string, error) {
	m.sessionID = sessionID
	return m.token, m.err
}

// mockAccessVerifier implements domain.AccessTokenVerifier, resolving tokens from a fixed map.
type mockAccessVerifier struct {
	claims map[string]*domain.AccessClaims
}

func (m *mockAccessVerifier) VerifyAccessToken(token string) (*domain.AccessClaims, error) {
	if c, ok := m.claims[token]; ok {
		return c, nil
	}
	return nil, domain.ErrTokenInvalid
}

// sequentialIDs implements domain.SessionIDGenerator with predictable ids.
type sequentialIDs struct {
	mu   sync.Mutex
	next int
}

func (s *sequentialIDs) NewSessionID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return "session-id-" + string(rune('a'+s.next-1)), nil
}

// mockRegistry implements domain.SatelliteRegistry for testing.
type mockRegistry struct {
	satellites []domain.Satellite
	err        error
}

func (m *mockRegistry) Satellites(_ context.Context) ([]domain.Satellite, error) {
	return m.satellites, m.err
}

// mockSatelliteClient implements domain.SatelliteClient, failing for names in fail.
// status overrides the HTTP status reported for a satellite; successes default to 200.
type mockSatelliteClient struct {
	mu       sync.Mutex
	fail     map[string]error
	status   map[string]int
	delay    map[string]time.Duration
	injected map[string]domain.IdentityRecord
	removed  []string
	existed  bool
}

func newMockSatelliteClient() *mockSatelliteClient {
	return &mockSatelliteClient{
		fail:     map[string]error{},
		status:   map[string]int{},
		delay:    map[string]time.Duration{},
		injected: map[string]domain.IdentityRecord{},
	}
}

func (m *mockSatelliteClient) wait(ctx context.Context, name string) error {
	m.mu.Lock()
	d := m.delay[name]
	m.mu.Unlock()
	if d == 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockSatelliteClient) reply(name string, existed bool) domain.SatelliteReply {
	if st, ok := m.status[name]; ok {
		return domain.SatelliteReply{Status: st, Existed: existed}
	}
	if m.fail[name] != nil {
		return domain.SatelliteReply{}
	}
	return domain.SatelliteReply{Status: 200, Existed: existed}
}

func (m *mockSatelliteClient) Inject(ctx context.Context, sat domain.Satellite, record *domain.IdentityRecord) (domain.SatelliteReply, error) {
	if err := m.wait(ctx, sat.Name); err != nil {
		return domain.SatelliteReply{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[sat.Name]; err != nil {
		return m.reply(sat.Name, false), err
	}
	m.injected[sat.Name] = *record
	return m.reply(sat.Name, false), nil
}

func (m *mockSatelliteClient) Remove(ctx context.Context, sat domain.Satellite, _ string) (domain.SatelliteReply, error) {
	if err := m.wait(ctx, sat.Name); err != nil {
		return domain.SatelliteReply{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[sat.Name]; err != nil {
		return m.reply(sat.Name, false), err
	}
	m.removed = append(m.removed, sat.Name)
	return m.reply(sat.Name, m.existed), nil
}

// mockIdentityService implements domain.IdentityServiceClient for testing.
type mockIdentityService struct {
	requires bool
	err      error
	email    string
	deadline bool
}

func (m *mockIdentityService) SignoutExternal(ctx context.Context, email string) (bool, error) {
	m.email = email
	_, m.deadline = ctx.Deadline()
	return m.requires, m.err
}

// mockProvider implements domain.IdentityProvider for testing.
type mockProvider struct {
	session    *domain.ProviderSession
	resolveErr error
	logoutURL  string
	logoutErr  error
	revokeErr  error
	revoked    []string
	returnTo   string
}

func (m *mockProvider) ResolveSession(_ context.Context, _ string) (*domain.ProviderSession, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return m.session, nil
}

func (m *mockProvider) LogoutURL(_ context.Context, _ string, returnTo string) (string, error) {
	m.returnTo = returnTo
	return m.logoutURL, m.logoutErr
}

func (m *mockProvider) RevokeSessions(_ context.Context, identityID string) error {
	m.revoked = append(m.revoked, identityID)
	return m.revokeErr
}

func aliceSession() *domain.ProviderSession {
	return &domain.ProviderSession{
		SessionID:       "kratos-session-1",
		Record:          domain.IdentityRecord{ID: "u1", Email: "a@x.com", Username: "alice", IsActive: true},
		AuthenticatedAt: time.Now().Add(-time.Minute),
	}
}

func threeSatellites() []domain.Satellite {
	return []domain.Satellite{
		{Name: "messages", BaseURL: "http://messages.local"},
		{Name: "portfolio", BaseURL: "http://portfolio.local"},
		{Name: "admin", BaseURL: "http://admin.local"},
	}
}
