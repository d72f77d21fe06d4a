package jwtauth

import (
	"net/http"
	"time"

	"github.com/wanderventure/wanderventure-server/httpx"
)

// GuardStageName names the guard in a pipeline
const GuardStageName = "access-guard"

// Guard verifies the session cookie and attaches the identity to the
// request context. Each request either ends VERIFIED with claims attached
// or is rejected with 401; there is no retry.
type Guard struct {
	cfg *Config
}

// NewGuard creates a Guard that verifies tokens with cfg's secret
func NewGuard(cfg *Config) *Guard {
	return &Guard{cfg: cfg}
}

// Verify runs the guard against x. On success the claims are already
// attached to x's context; on failure the 401 response has been written.
func (g *Guard) Verify(x httpx.Exchange) (*Claims, error) {
	startTime := time.Now()
	requestID, _ := httpx.GetRequestID(x.Context())

	token, err := extractTokenFromExchange(x, g.cfg.CookieName())
	if err != nil {
		logAuthFailure(g.cfg, requestID, token, err, time.Since(startTime))
		reject(x, err)
		return nil, err
	}

	claims, err := parseAndValidateJWT(token, g.cfg)
	if err != nil {
		logAuthFailure(g.cfg, requestID, token, err, time.Since(startTime))
		reject(x, err)
		return nil, err
	}

	x.SetContext(WithClaims(x.Context(), claims))
	logAuthSuccess(g.cfg, requestID, claims, token, time.Since(startTime))

	return claims, nil
}

// Stage exposes the guard as a pipeline stage
func (g *Guard) Stage() httpx.Stage {
	return httpx.Stage{
		Name: GuardStageName,
		Run: func(x httpx.Exchange) error {
			_, err := g.Verify(x)
			return err
		},
	}
}

// reject writes the 401 response for a credential error
func reject(x httpx.Exchange, err error) {
	x.SetStatus(http.StatusUnauthorized)
	x.SendBody(buildErrorResponse(err))
}

// buildErrorResponse constructs the 401 body. Only the public category is
// exposed; the fine-grained code goes to the security log.
func buildErrorResponse(err error) map[string]any {
	reason := ErrInvalidToken
	if IsMissingToken(err) {
		reason = ErrMissingToken
	}
	return map[string]any{
		"error":   "unauthorized",
		"message": rejectionMessage(err),
		"reason":  string(reason),
	}
}
