package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieConfig describes a satellite's own session cookie.
type CookieConfig struct {
	Name   string
	Domain string
	MaxAge time.Duration
	Secure bool
}

func (cc CookieConfig) set(c echo.Context, sessionID string) {
	c.SetCookie(&http.Cookie{
		Name:     cc.Name,
		Value:    sessionID,
		Path:     "/",
		Domain:   cc.Domain,
		MaxAge:   int(cc.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (cc CookieConfig) clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     cc.Name,
		Value:    "",
		Path:     "/",
		Domain:   cc.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionID returns the session cookie value, or "" when absent.
func (cc CookieConfig) sessionID(c echo.Context) string {
	cookie, err := c.Cookie(cc.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
