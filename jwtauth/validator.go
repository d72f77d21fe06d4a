package jwtauth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// identityClaim holds the caller's identity mapping, nested so that its keys
// never collide with the registered claims below
const identityClaim = "idn"

var registeredClaims = map[string]bool{
	"sub": true, "iss": true, "aud": true, "exp": true,
	"nbf": true, "iat": true, "jti": true, identityClaim: true,
}

// parseAndValidateJWT parses and validates a JWT token string
func parseAndValidateJWT(tokenString string, cfg *Config) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if err := validateAlgorithm(token, cfg); err != nil {
			return nil, err
		}
		return cfg.secret, nil
	}, jwt.WithLeeway(cfg.ClockSkewLeeway()))

	if err != nil {
		// keyfunc errors come back wrapped by the jwt library
		var valErr *ValidationError
		if errors.As(err, &valErr) {
			return nil, valErr
		}

		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, NewValidationError(ErrExpired, "token has expired", err)
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, NewValidationError(ErrExpired, "token is not valid yet", err)
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, NewValidationError(ErrInvalidSignature, "invalid signature", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, NewValidationError(ErrInvalidSignature, "signature verification failed", err)
		}
		return nil, NewValidationError(ErrMalformed, "malformed token", err)
	}

	if !token.Valid {
		return nil, NewValidationError(ErrInvalidSignature, "token is invalid", nil)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, NewValidationError(ErrMalformed, "invalid claims format", nil)
	}

	if err := validateRequiredClaims(mapClaims, cfg); err != nil {
		return nil, err
	}

	return mapJWTClaimsToClaims(mapClaims), nil
}

// validateAlgorithm ensures the token header names the configured algorithm
// and that the parsed signing method matches it
func validateAlgorithm(token *jwt.Token, cfg *Config) error {
	raw, exists := token.Header["alg"]
	if !exists {
		return NewValidationError(ErrMalformed, "missing algorithm in token header", nil)
	}
	alg, ok := raw.(string)
	if !ok {
		return NewValidationError(ErrMalformedAlgorithmHeader, "algorithm header must be a string", nil)
	}

	if strings.EqualFold(alg, "none") {
		return NewValidationError(ErrNoneAlgorithm, "none algorithm not allowed", nil)
	}

	if alg != cfg.Algorithm() {
		return NewValidationError(
			ErrUnsupportedAlgorithm,
			fmt.Sprintf("algorithm %s not supported (available: %s)", alg, cfg.Algorithm()),
			nil,
		)
	}

	if token.Method.Alg() != cfg.signingMethod.Alg() {
		return NewValidationError(
			ErrInvalidSignature,
			fmt.Sprintf("algorithm confusion detected: token method %s does not match expected method %s",
				token.Method.Alg(), cfg.signingMethod.Alg()),
			nil,
		)
	}

	return nil
}

// mapJWTClaimsToClaims converts jwt.MapClaims to our Claims struct
func mapJWTClaimsToClaims(mapClaims jwt.MapClaims) *Claims {
	claims := &Claims{
		Custom: make(map[string]interface{}),
	}

	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Subject = sub
	}
	if iss, ok := mapClaims["iss"].(string); ok {
		claims.Issuer = iss
	}
	if aud, err := mapClaims.GetAudience(); err == nil && len(aud) > 0 {
		claims.Audience = aud[0]
	}
	if jti, ok := mapClaims["jti"].(string); ok {
		claims.JWTID = jti
	}

	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if nbf, err := mapClaims.GetNotBefore(); err == nil && nbf != nil {
		claims.NotBefore = nbf.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	for key, value := range mapClaims {
		if !registeredClaims[key] {
			claims.Custom[key] = value
		}
	}
	if identity, ok := mapClaims[identityClaim].(map[string]interface{}); ok {
		claims.identity = identity
	}

	return claims
}

// validateRequiredClaims ensures all required claims are present, either in
// the nested identity or at the top level
func validateRequiredClaims(mapClaims jwt.MapClaims, cfg *Config) error {
	identity, _ := mapClaims[identityClaim].(map[string]interface{})
	for _, claimName := range cfg.RequiredClaims() {
		if _, ok := identity[claimName]; ok {
			continue
		}
		if _, ok := mapClaims[claimName]; !ok {
			return missingClaimError(claimName)
		}
	}
	return nil
}

func missingClaimError(claimName string) *ValidationError {
	return NewValidationError(ErrMissingClaim, fmt.Sprintf("required claim missing: %s", claimName), nil)
}
