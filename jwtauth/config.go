package jwtauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// DefaultCookieName is the cookie carrying the access token
const DefaultCookieName = "token"

// minSecretLength is the HS256 key size floor in bytes
const minSecretLength = 32

// Config holds immutable configuration shared by the Issuer, the cookie
// manager and the Guard. All three must be built from the same Config so
// tokens are verified with the secret they were signed with.
type Config struct {
	secret          []byte
	signingMethod   jwt.SigningMethod
	clockSkewLeeway time.Duration
	cookieName      string
	tokenTTL        time.Duration
	requiredClaims  []string
	logger          *zap.Logger
}

// ConfigOption is a functional option for configuring the middleware
type ConfigOption func(*Config) error

// NewConfig creates a new immutable configuration with the given options.
// A missing or weak secret is a CONFIG_ERROR; callers should treat it as fatal.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := &Config{
		signingMethod:   jwt.SigningMethodHS256,
		clockSkewLeeway: 60 * time.Second,
		cookieName:      DefaultCookieName,
		logger:          zap.NewNop(),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, NewValidationError(ErrConfigError, fmt.Sprintf("configuration error: %v", err), err)
		}
	}

	if len(cfg.secret) == 0 {
		return nil, NewValidationError(ErrConfigError, "signing secret is not configured (use WithHS256)", nil)
	}

	return cfg, nil
}

// WithHS256 configures HMAC-SHA256 signing and validation with the given secret
func WithHS256(secret []byte) ConfigOption {
	return func(c *Config) error {
		if len(secret) == 0 {
			return fmt.Errorf("HS256 secret is empty")
		}
		if len(secret) < minSecretLength {
			return fmt.Errorf("HS256 secret must be at least %d bytes (256 bits), got %d bytes", minSecretLength, len(secret))
		}
		c.secret = append([]byte(nil), secret...)
		return nil
	}
}

// WithClockSkew sets the clock skew tolerance for exp/nbf validation
func WithClockSkew(skew time.Duration) ConfigOption {
	return func(c *Config) error {
		if skew < 0 {
			return fmt.Errorf("clock skew must be non-negative, got %v", skew)
		}
		c.clockSkewLeeway = skew
		return nil
	}
}

// WithCookie overrides the session cookie name
func WithCookie(cookieName string) ConfigOption {
	return func(c *Config) error {
		if cookieName == "" {
			return fmt.Errorf("cookie name cannot be empty")
		}
		c.cookieName = cookieName
		return nil
	}
}

// WithTokenTTL sets the access token lifetime. Zero keeps tokens unbounded.
func WithTokenTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) error {
		if ttl < 0 {
			return fmt.Errorf("token ttl must be non-negative, got %v", ttl)
		}
		c.tokenTTL = ttl
		return nil
	}
}

// WithLogger sets a structured logger for security events
func WithLogger(logger *zap.Logger) ConfigOption {
	return func(c *Config) error {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
		return nil
	}
}

// WithRequiredClaims specifies claim names that must be present in the JWT
func WithRequiredClaims(claims ...string) ConfigOption {
	return func(c *Config) error {
		c.requiredClaims = append(c.requiredClaims, claims...)
		return nil
	}
}

// Algorithm returns the configured signing algorithm name
func (c *Config) Algorithm() string {
	return c.signingMethod.Alg()
}

func (c *Config) ClockSkewLeeway() time.Duration {
	return c.clockSkewLeeway
}

func (c *Config) CookieName() string {
	return c.cookieName
}

func (c *Config) TokenTTL() time.Duration {
	return c.tokenTTL
}

func (c *Config) RequiredClaims() []string {
	return c.requiredClaims
}

func (c *Config) Logger() *zap.Logger {
	return c.logger
}
