package jwtauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs identity claims into access tokens
type Issuer struct {
	cfg *Config
	now func() time.Time
}

// NewIssuer creates an Issuer using the secret and lifetime from cfg
func NewIssuer(cfg *Config) *Issuer {
	return &Issuer{cfg: cfg, now: time.Now}
}

// Sign returns a signed token carrying identity. The identity is stored
// as-is under a private claim, so keys such as exp or sub keep no JWT
// meaning. iat is always set; exp is set only when the config has a token
// lifetime. An identity lacking a required claim is rejected with
// MISSING_CLAIM.
func (i *Issuer) Sign(identity map[string]interface{}) (string, error) {
	for _, name := range i.cfg.RequiredClaims() {
		if _, ok := identity[name]; !ok {
			return "", missingClaimError(name)
		}
	}

	nested := make(map[string]interface{}, len(identity))
	for k, v := range identity {
		nested[k] = v
	}

	now := i.now()
	claims := jwt.MapClaims{
		identityClaim: nested,
		"iat":         now.Unix(),
	}
	if ttl := i.cfg.TokenTTL(); ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}

	token := jwt.NewWithClaims(i.cfg.signingMethod, claims)
	signed, err := token.SignedString(i.cfg.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
