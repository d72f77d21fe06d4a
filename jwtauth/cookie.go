package jwtauth

import (
	"net/http"
	"time"

	"github.com/wanderventure/wanderventure-server/httpx"
)

// CookiePolicy holds the attributes applied to every session cookie write
type CookiePolicy struct {
	Name     string
	Secure   bool
	SameSite httpx.SameSite
	MaxAge   int // seconds; 0 leaves a browser-session cookie
}

// CookiePolicyFor returns the attribute policy for the deployment. Production
// needs Secure + SameSite=None for cross-site delivery over HTTPS; local HTTP
// development gets SameSite=Strict without Secure.
func CookiePolicyFor(cfg *Config, production bool) CookiePolicy {
	policy := CookiePolicy{
		Name:     cfg.CookieName(),
		Secure:   production,
		SameSite: httpx.SameSiteStrict,
		MaxAge:   int(cfg.TokenTTL() / time.Second),
	}
	if production {
		policy.SameSite = httpx.SameSiteNone
	}
	return policy
}

// CookieManager writes and clears the session cookie
type CookieManager struct {
	policy CookiePolicy
}

// NewCookieManager creates a CookieManager with the given policy
func NewCookieManager(policy CookiePolicy) *CookieManager {
	return &CookieManager{policy: policy}
}

// Policy returns the attribute policy in effect
func (m *CookieManager) Policy() CookiePolicy {
	return m.policy
}

// Issue sets the session cookie to token and acknowledges. The token is not
// echoed in the body.
func (m *CookieManager) Issue(x httpx.Exchange, token string) {
	x.WriteCookie(m.cookie(token, m.policy.MaxAge, time.Time{}))
	x.SetStatus(http.StatusOK)
	x.SendBody(map[string]any{"success": true})
}

// Revoke overwrites the session cookie with an immediately expiring one
func (m *CookieManager) Revoke(x httpx.Exchange) {
	x.WriteCookie(m.cookie("", -1, time.Unix(0, 0)))
	x.SetStatus(http.StatusOK)
	x.SendBody(map[string]any{"success": true})
}

func (m *CookieManager) cookie(value string, maxAge int, expires time.Time) httpx.Cookie {
	return httpx.Cookie{
		Name:     m.policy.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   m.policy.Secure,
		SameSite: m.policy.SameSite,
	}
}
