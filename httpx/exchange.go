// Package httpx holds the narrow request/response surface the auth stages run
// against, and an ordered pipeline of named stages over it.
package httpx

import (
	"context"
	"net/http"
	"time"
)

// SameSite mirrors the cookie SameSite attribute values we emit
type SameSite string

const (
	SameSiteStrict SameSite = "strict"
	SameSiteLax    SameSite = "lax"
	SameSiteNone   SameSite = "none"
)

// Cookie describes a cookie to be written on the response
type Cookie struct {
	Name     string
	Value    string
	Path     string
	MaxAge   int       // seconds; negative clears the cookie immediately
	Expires  time.Time // zero means session cookie
	HTTPOnly bool
	Secure   bool
	SameSite SameSite
}

// Exchange is the subset of a request/response pair the auth stages need.
// Implementations are request-scoped and not safe for concurrent use.
type Exchange interface {
	ReadCookie(name string) (string, bool)
	WriteCookie(c Cookie)
	SetStatus(code int)
	SendBody(v any)

	// Context returns the request context; SetContext replaces it for
	// every stage and handler that runs after the caller.
	Context() context.Context
	SetContext(ctx context.Context)
	Header(name string) string
}

// ToHTTP converts the cookie into its net/http form
func (c Cookie) ToHTTP() *http.Cookie {
	path := c.Path
	if path == "" {
		path = "/"
	}
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     path,
		MaxAge:   c.MaxAge,
		Expires:  c.Expires,
		HttpOnly: c.HTTPOnly,
		Secure:   c.Secure,
	}
	switch c.SameSite {
	case SameSiteStrict:
		hc.SameSite = http.SameSiteStrictMode
	case SameSiteLax:
		hc.SameSite = http.SameSiteLaxMode
	case SameSiteNone:
		hc.SameSite = http.SameSiteNoneMode
	}
	return hc
}
