package jwtauth

import (
	"net/http"
	"strings"

	"github.com/wanderventure/wanderventure-server/httpx"
	"google.golang.org/grpc/metadata"
)

// cookieMetadataKeys are the gRPC metadata entries that may carry the
// browser's Cookie header; the second is what grpc-gateway forwards.
var cookieMetadataKeys = []string{"cookie", "grpcgateway-cookie"}

// extractTokenFromExchange reads the session cookie off the request.
// A cleared cookie (empty value) is treated the same as no cookie.
func extractTokenFromExchange(x httpx.Exchange, cookieName string) (string, error) {
	value, ok := x.ReadCookie(cookieName)
	if !ok {
		return "", NewValidationError(ErrMissingToken, "cookie not found", nil)
	}

	token := strings.TrimSpace(value)
	if token == "" {
		return "", NewValidationError(ErrMissingToken, "cookie value is empty", nil)
	}

	return token, nil
}

// extractTokenFromMetadata reads the session cookie out of gRPC metadata
func extractTokenFromMetadata(md metadata.MD, cookieName string) (string, error) {
	for _, key := range cookieMetadataKeys {
		for _, line := range md.Get(key) {
			cookies, err := http.ParseCookie(line)
			if err != nil {
				continue
			}
			for _, c := range cookies {
				if c.Name != cookieName {
					continue
				}
				if token := strings.TrimSpace(c.Value); token != "" {
					return token, nil
				}
			}
		}
	}
	return "", NewValidationError(ErrMissingToken, "cookie metadata not found", nil)
}
