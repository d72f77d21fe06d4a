package jwtauth

import (
	"github.com/gin-gonic/gin"
	"github.com/wanderventure/wanderventure-server/httpx"
)

// Pipeline returns the request-id and guard stages in order
func Pipeline(cfg *Config) *httpx.Pipeline {
	return httpx.NewPipeline(httpx.RequestID(), NewGuard(cfg).Stage())
}

// JWTAuth returns a Gin middleware handler for cookie JWT authentication
func JWTAuth(cfg *Config) gin.HandlerFunc {
	return httpx.Handler(Pipeline(cfg))
}
