package jwtauth

import "time"

// Claims represents parsed and validated JWT claims
type Claims struct {
	Subject   string                 // sub
	Issuer    string                 // iss
	Audience  string                 // aud (first entry when a list)
	ExpiresAt time.Time              // exp, zero when the token never expires
	NotBefore time.Time              // nbf
	IssuedAt  time.Time              // iat
	JWTID     string                 // jti
	Custom    map[string]interface{} // unregistered top-level claims

	identity map[string]interface{}
}

// Identity returns a copy of the identity mapping handed to the Issuer at
// sign-in. It is empty for tokens not minted by an Issuer.
func (c *Claims) Identity() map[string]interface{} {
	identity := make(map[string]interface{}, len(c.identity))
	for k, v := range c.identity {
		identity[k] = v
	}
	return identity
}

// Email returns the identity's email, falling back to a top-level email claim
func (c *Claims) Email() string {
	if v, ok := c.identity["email"].(string); ok {
		return v
	}
	if v, ok := c.Custom["email"].(string); ok {
		return v
	}
	return ""
}
