package config

import (
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const identityCookieName = "mineduel_identity"

type Cookies struct {
	Domain       string `env:"COOKIES_DOMAIN"`
	Secure       bool   `env:"COOKIES_SECURE" envDefault:"true"`
	SameSiteMode string `env:"COOKIES_SAMESITE" envDefault:"LAX"`
}

func NewCookies() (*Cookies, error) {
	cfg, err := env.ParseAs[Cookies]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Cookies) sameSite() http.SameSite {
	switch strings.ToUpper(c.SameSiteMode) {
	case "DEFAULT":
		return http.SameSiteDefaultMode
	case "STRICT":
		return http.SameSiteStrictMode
	case "NONE":
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// SetIdentity stores the signed device token. HttpOnly: scripts never need
// to read it, the server echoes the resolved role back in every snapshot.
func (c *Cookies) SetIdentity(w http.ResponseWriter, token string, lifetime time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     identityCookieName,
		Path:     "/",
		Value:    token,
		Expires:  time.Now().Add(lifetime),
		HttpOnly: true,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
	})
}

func (c *Cookies) Identity(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(identityCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
