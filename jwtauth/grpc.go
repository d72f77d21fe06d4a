package jwtauth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wanderventure/wanderventure-server/httpx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor returns a gRPC unary server interceptor that verifies
// the session cookie forwarded in metadata. Methods listed in publicMethods
// (full names, e.g. "/grpc.health.v1.Health/Check") skip verification.
func UnaryServerInterceptor(cfg *Config, publicMethods ...string) grpc.UnaryServerInterceptor {
	public := make(map[string]bool, len(publicMethods))
	for _, m := range publicMethods {
		public[m] = true
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if public[info.FullMethod] {
			return handler(ctx, req)
		}

		startTime := time.Now()

		md, _ := metadata.FromIncomingContext(ctx)
		requestID := uuid.New().String()
		if ids := md.Get("x-request-id"); len(ids) > 0 && ids[0] != "" {
			requestID = ids[0]
		}
		ctx = httpx.WithRequestID(ctx, requestID)

		token, err := extractTokenFromMetadata(md, cfg.CookieName())
		if err != nil {
			logAuthFailure(cfg, requestID, token, err, time.Since(startTime))
			return nil, status.Error(codes.Unauthenticated, rejectionMessage(err))
		}

		claims, err := parseAndValidateJWT(token, cfg)
		if err != nil {
			logAuthFailure(cfg, requestID, token, err, time.Since(startTime))
			return nil, status.Error(codes.Unauthenticated, rejectionMessage(err))
		}

		ctx = WithClaims(ctx, claims)
		logAuthSuccess(cfg, requestID, claims, token, time.Since(startTime))

		return handler(ctx, req)
	}
}
