package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sso-hub/internal/domain"
	"sso-hub/internal/infrastructure/repository"
	"sso-hub/internal/infrastructure/store"
	"sso-hub/internal/infrastructure/token"
	"sso-hub/internal/usecase"
	"sso-hub/utils/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookieName = "messages_session"

type stubIdentityService struct {
	requires bool
	err      error
}

func (s *stubIdentityService) SignoutExternal(_ context.Context, _ string) (bool, error) {
	return s.requires, s.err
}

type satelliteFixture struct {
	e        *echo.Echo
	issuer   *token.SSOIssuer
	push     *repository.PushRepository
	sessions *repository.SessionRepository
	signals  *repository.SignalRepository
}

func newSatelliteFixture(t *testing.T, identity domain.IdentityServiceClient) *satelliteFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	kv := store.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = kv.Close() })
	push := repository.NewPushRepository(kv, 0)
	sessions := repository.NewSessionRepository(kv)
	signals := repository.NewSignalRepository(kv, time.Hour)

	cfg := token.SSOConfig{Secret: "0123456789abcdef0123456789abcdef", Issuer: "identity-service", TTL: 5 * time.Minute}
	issuer, err := token.NewSSOIssuer(cfg)
	require.NoError(t, err)
	verifier, err := token.NewSSOVerifier(cfg)
	require.NoError(t, err)

	cookie := CookieConfig{Name: testCookieName, MaxAge: 7 * 24 * time.Hour}
	establish := usecase.NewEstablishSession(verifier, push, sessions, token.NewRandomSessionIDs(), cookie.MaxAge, logger)
	getSession := usecase.NewGetSession(sessions, push, logger)

	e := echo.New()
	e.Validator = validator.New()

	internal := NewInternalUserHandler(
		usecase.NewInjectUser(push, nil, logger),
		usecase.NewRemoveUser(push, signals, logger),
		usecase.NewGetUser(push),
		establish,
		cookie,
	)
	e.POST("/internal/user/inject", internal.HandleInject)
	e.DELETE("/internal/user/remove", internal.HandleRemove)
	e.GET("/internal/user", internal.HandleGet)
	e.POST("/internal/session/establish", internal.HandleEstablish)

	sessionHandler := NewSessionHandler(establish, getSession, cookie)
	e.GET("/session/establish", sessionHandler.HandleEstablish)
	e.GET("/session", sessionHandler.HandleGet)

	e.POST("/auth/verify-token", NewVerifyHandler(usecase.NewVerifyToken(verifier, logger)).Handle)

	signout := NewSignoutHandler(
		usecase.NewSignoutLocal(sessions, push, identity, time.Second, "http://id.local/auth/signout-cascade?returnUrl=http%3A%2F%2Fmessages.local", logger),
		usecase.NewCheckSignout(sessions, signals, logger),
		cookie,
	)
	e.POST("/auth/signout", signout.HandleSignout)
	e.GET("/auth/signout-check", signout.HandleCheck)

	return &satelliteFixture{e: e, issuer: issuer, push: push, sessions: sessions, signals: signals}
}

func (f *satelliteFixture) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, f.e, method, target, body, cookies...)
}

func serve(t *testing.T, e *echo.Echo, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", testCookieName)
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (f *satelliteFixture) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/internal/user/inject",
		`{"id":"u1","email":"a@x.com","username":"alice","firstName":"Alice","isActive":true,"accessToken":"T1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	ssoToken, err := f.issuer.Issue(&domain.IdentityRecord{ID: "u1", Email: "a@x.com"})
	require.NoError(t, err)

	rec = f.do(t, http.MethodGet, "/session/establish?ssoToken="+ssoToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	return sessionCookie(t, rec)
}

func TestSatellite_InjectEstablishLookup(t *testing.T) {
	f := newSatelliteFixture(t, &stubIdentityService{})

	rec := f.do(t, http.MethodPost, "/internal/user/inject", `{"id":"u1","email":"a@x.com","username":"alice","accessToken":"T1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true, "userId": "u1"}, decode(t, rec))

	ssoToken, err := f.issuer.Issue(&domain.IdentityRecord{ID: "u1", Email: "a@x.com"})
	require.NoError(t, err)

	rec = f.do(t, http.MethodGet, "/session/establish?ssoToken="+ssoToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
	assert.Equal(t, "/", cookie.Path)
	assert.Len(t, cookie.Value, 43)

	body := decode(t, rec)
	assert.Equal(t, "alice", body["username"])
	assert.NotContains(t, body, "accessToken")

	rec = f.do(t, http.MethodGet, "/session", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "a@x.com", body["email"])
	assert.NotContains(t, body, "accessToken")
}

func TestSatellite_InjectValidation(t *testing.T) {
	f := newSatelliteFixture(t, &stubIdentityService{})

	rec := f.do(t, http.MethodPost, "/internal/user/inject", `{"id":"u1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/internal/user/inject", `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/internal/user/inject", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSatellite_AccessTokenPreservedOnRepush(t *testing.T) {
	f := newSatelliteFixture(t, &stubIdentityService{})

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/internal/user/inject", `{"id":"u1","email":"a@x.com","accessToken":"T1"}`).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/internal/user/inject", `{"id":"u1","email":"a@x.com","accessToken":""}`).Code)

	rec := f.do(t, http.MethodGet, "/internal/user?email=a@x.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "T1", decode(t, rec)["accessToken"])
}

func TestSatellite_StaleCookieAfterRemove(t *testing.T) {
	f := newSatelliteFixture(t, &stubIdentityService{})
	cookie := f.login(t)

	rec := f.do(t, http.MethodDelete, "/internal/user/remove", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true, "existed": true}, decode(t, rec))

	rec = f.do(t, http.MethodGet, "/session/establish", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, []any{ReasonNoSession, ReasonSessionExpired}, body["reason"])
	assert.NotContains(t, body, "email")

	rec = f.do(t, http.MethodDelete, "/internal/user/remove", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["existed"])
}

func TestSatellite_SessionReasons(t *testing.T) {
	f := newSatelliteFixture(t, &stubIdentityService{})

	rec := f.do(t, http.MethodGet, "/session", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ReasonNoSession, decode(t, rec)["reason"])

	rec = f.do(t, http.MethodGet, "/session", "", &http.Cookie{Name: testCookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ReasonNoSession, decode(t, rec)["reason"])

	ssoToken, err := f.issuer.Issue(&domain.IdentityRecord{ID: "u9", Email: "nobody@x.com"})
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/session/establish?ssoToken="+ssoToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, ReasonNoUserData, body["reason"])
	assert.Equal(t, true, body["requiresLogin"])
}

func TestSatellite_EstablishRejectsBadToken(t *testing.T) {
	f := newSatelliteFixture(t, &stubIdentityService{})

	rec := f.do(t, http.MethodGet, "/session/establish?ssoToken=not.a.jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, map[string]any{"error": "invalid token", "requiresLogin": true}, decode(t, rec))
}

func TestSatellite_VerifyToken(t *testing.T) {
	f := newSatelliteFixture(t, &stubIdentityService{})

	ssoToken, err := f.issuer.Issue(&domain.IdentityRecord{ID: "u1", Email: "a@x.com"})
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/auth/verify-token", `{"token":"`+ssoToken+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "a@x.com", body["email"])
	assert.Equal(t, "u1", body["userId"])

	rec = f.do(t, http.MethodPost, "/auth/verify-token", `{"token":"`+ssoToken+`x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, map[string]any{"error": "invalid token", "requiresLogin": true}, decode(t, rec))
}

func TestSatellite_InternalEstablishFromPush(t *testing.T) {
	f := newSatelliteFixture(t, &stubIdentityService{})
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/internal/user/inject", `{"id":"u1","email":"a@x.com"}`).Code)

	rec := f.do(t, http.MethodPost, "/internal/session/establish", `{"email":"a@x.com"}`,
		&http.Cookie{Name: testCookieName, Value: "attacker-chosen"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	sid, _ := body["sessionId"].(string)
	assert.NotEqual(t, "attacker-chosen", sid)
	assert.Equal(t, sid, sessionCookie(t, rec).Value)

	rec = f.do(t, http.MethodPost, "/internal/session/establish", `{"email":"ghost@x.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/internal/session/establish", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSatellite_Signout(t *testing.T) {
	f := newSatelliteFixture(t, &stubIdentityService{requires: true})
	cookie := f.login(t)

	rec := f.do(t, http.MethodPost, "/auth/signout", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["requiresCentralSignout"])
	assert.Contains(t, body["centralSignoutUrl"], "/auth/signout-cascade")
	assert.Equal(t, -1, sessionCookie(t, rec).MaxAge)

	rec = f.do(t, http.MethodGet, "/session", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, err := f.push.Get(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, domain.ErrUserDataNotFound)
}

func TestSatellite_SignoutWithoutSession(t *testing.T) {
	f := newSatelliteFixture(t, &stubIdentityService{requires: true})

	rec := f.do(t, http.MethodPost, "/auth/signout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["requiresCentralSignout"])
}

func TestSatellite_SignoutCheck(t *testing.T) {
	f := newSatelliteFixture(t, &stubIdentityService{})
	cookie := f.login(t)

	rec := f.do(t, http.MethodGet, "/auth/signout-check", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["signedOut"])

	require.NoError(t, f.signals.Mark(context.Background(), domain.SignoutSignal{Email: "a@x.com", Source: "central"}))

	rec = f.do(t, http.MethodGet, "/auth/signout-check", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["signedOut"])
	assert.Equal(t, -1, sessionCookie(t, rec).MaxAge)

	rec = f.do(t, http.MethodGet, "/session", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
