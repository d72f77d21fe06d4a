// Package server runs the HTTP API and the optional gRPC health endpoint
// until the context is cancelled, then drains both.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/wanderventure/wanderventure-server/config"
	"github.com/wanderventure/wanderventure-server/jwtauth"
	"github.com/wanderventure/wanderventure-server/store"
)

const (
	shutdownTimeout       = 10 * time.Second
	pingTimeout           = 5 * time.Second
	defaultHealthInterval = 15 * time.Second
)

// gRPC health methods callable without a session
var publicMethods = []string{
	healthpb.Health_Check_FullMethodName,
	"/grpc.health.v1.Health/List",
}

// Params configures Run
type Params struct {
	Config *config.Config
	Store  store.Store
	Logger *zap.Logger

	// Listeners override the configured ports when set; tests pass
	// 127.0.0.1:0 listeners here.
	HTTPListener net.Listener
	GRPCListener net.Listener

	// HealthInterval is how often the store is pinged to refresh the gRPC
	// health status. Zero means 15s.
	HealthInterval time.Duration
}

// AuthConfig builds the auth configuration shared by the issuer and both
// guards. A short or missing secret is a CONFIG_ERROR.
func AuthConfig(cfg *config.Config, logger *zap.Logger) (*jwtauth.Config, error) {
	return jwtauth.NewConfig(
		jwtauth.WithHS256([]byte(cfg.AccessTokenSecret)),
		jwtauth.WithTokenTTL(cfg.TokenTTL),
		jwtauth.WithRequiredClaims(cfg.RequiredClaims...),
		jwtauth.WithLogger(logger.Named("auth")),
	)
}

// Run serves until ctx is cancelled or a listener fails. Shutdown drains
// HTTP first, then marks gRPC health NOT_SERVING and stops gRPC gracefully.
func Run(ctx context.Context, p Params) error {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := p.Config

	authCfg, err := AuthConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	httpLn := p.HTTPListener
	if httpLn == nil {
		httpLn, err = (&net.ListenConfig{}).Listen(ctx, "tcp", cfg.HTTPAddr())
		if err != nil {
			return fmt.Errorf("listen http: %w", err)
		}
	}
	httpSrv := &http.Server{
		Handler:           NewHandler(cfg, authCfg, p.Store, logger),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcLn := p.GRPCListener
	if grpcLn == nil && cfg.GRPCAddr() != "" {
		grpcLn, err = (&net.ListenConfig{}).Listen(ctx, "tcp", cfg.GRPCAddr())
		if err != nil {
			_ = httpLn.Close()
			return fmt.Errorf("listen grpc: %w", err)
		}
	}

	var (
		grpcSrv      *grpc.Server
		healthSrv    *health.Server
		storeHealthy healthpb.HealthCheckResponse_ServingStatus
	)
	if grpcLn != nil {
		grpcSrv = grpc.NewServer(
			grpc.UnaryInterceptor(jwtauth.UnaryServerInterceptor(authCfg, publicMethods...)),
		)
		healthSrv = health.NewServer()
		healthpb.RegisterHealthServer(grpcSrv, healthSrv)
		storeHealthy = storeStatus(ctx, p.Store, logger)
		healthSrv.SetServingStatus("", storeHealthy)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server",
			zap.String("addr", httpLn.Addr().String()),
			zap.String("environment", cfg.Environment),
			zap.String("store", cfg.StoreDriver))
		if err := httpSrv.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	if grpcSrv != nil {
		interval := p.HealthInterval
		if interval <= 0 {
			interval = defaultHealthInterval
		}
		g.Go(func() error {
			watchStore(ctx, p.Store, healthSrv, storeHealthy, interval, logger)
			return nil
		})

		g.Go(func() error {
			logger.Info("starting gRPC server", zap.String("addr", grpcLn.Addr().String()))
			if err := grpcSrv.Serve(grpcLn); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve grpc: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown", zap.Error(err))
		}
		if grpcSrv != nil {
			healthSrv.Shutdown()
			grpcSrv.GracefulStop()
		}

		logger.Info("shutdown complete")
		return nil
	})

	return g.Wait()
}

// watchStore re-pings the store every interval and publishes the result as
// the overall gRPC health status until ctx is done
func watchStore(ctx context.Context, st store.Store, healthSrv *health.Server,
	last healthpb.HealthCheckResponse_ServingStatus, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status := storeStatus(ctx, st, logger)
			if ctx.Err() != nil {
				return
			}
			if status != last {
				logger.Info("store health changed", zap.String("status", status.String()))
				last = status
			}
			healthSrv.SetServingStatus("", status)
		}
	}
}

func storeStatus(ctx context.Context, st store.Store, logger *zap.Logger) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := st.Ping(ctx); err != nil {
		logger.Warn("store ping failed", zap.Error(err))
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}
