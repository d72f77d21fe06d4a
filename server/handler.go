package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/wanderventure/wanderventure-server/api"
	"github.com/wanderventure/wanderventure-server/config"
	"github.com/wanderventure/wanderventure-server/httpx"
	"github.com/wanderventure/wanderventure-server/jwtauth"
	"github.com/wanderventure/wanderventure-server/store"
)

// NewHandler assembles the gin engine behind CORS. Every request gets a
// correlation ID before routing.
func NewHandler(cfg *config.Config, authCfg *jwtauth.Config, st store.Store, logger *zap.Logger) http.Handler {
	engine := gin.New()
	engine.Use(
		recovery(logger),
		httpx.Handler(httpx.NewPipeline(httpx.RequestID())),
		accessLog(logger),
	)
	api.NewHandler(st, authCfg, cfg.IsProduction(), logger).Register(engine)

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", httpx.RequestIDHeader},
		ExposedHeaders:   []string{httpx.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})(engine)
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		requestID, _ := httpx.GetRequestID(c.Request.Context())
		c.Header(httpx.RequestIDHeader, requestID)

		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestID),
			zap.String("client_ip", c.ClientIP()))
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		logger.Error("panic recovered",
			zap.Any("panic", err),
			zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	})
}
