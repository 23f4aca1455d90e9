// Package server exposes the standard gRPC health service, backed by a
// periodic database probe, behind the request ID, rate limit, logging and
// metrics interceptors.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	middleware "github.com/tejusbharadwaj/agrotelemetry/internal/grpc/middlewares"
	"github.com/tejusbharadwaj/agrotelemetry/internal/metrics"
)

// ServerConfig holds configuration options for the gRPC server
type ServerConfig struct {
	RateLimit      float64 // Requests per second, 0 disables limiting
	RateLimitBurst int     // Maximum burst size for rate limiting
}

// DefaultServerConfig returns a ServerConfig with sensible defaults
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		RateLimit:      20,
		RateLimitBurst: 40,
	}
}

// SetupServer builds the gRPC server with all interceptors and registers
// the health service.
func SetupServer(health *HealthChecker, logger *logrus.Logger, m *metrics.Metrics, config ServerConfig) *grpc.Server {
	server := grpc.NewServer(
		grpc.UnaryInterceptor(
			chainUnaryInterceptors(
				middleware.ContextMiddleware, // Add request ID first
				middleware.NewRateLimitInterceptor(config.RateLimit, config.RateLimitBurst),
				middleware.NewLoggingInterceptor(logger),
				middleware.NewMetricsInterceptor(m),
			),
		),
	)

	grpc_health_v1.RegisterHealthServer(server, health)
	return server
}

// Serve listens on addr and serves until ctx is cancelled.
func Serve(ctx context.Context, srv *grpc.Server, addr string, logger *logrus.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	logger.WithField("addr", lis.Addr().String()).Info("gRPC server listening")
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// chainUnaryInterceptors creates a single interceptor from multiple interceptors
func chainUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor := interceptors[i]
			chainedInterceptor := chain
			chain = func(currentCtx context.Context, currentReq interface{}) (interface{}, error) {
				return interceptor(currentCtx, currentReq, info, chainedInterceptor)
			}
		}
		return chain(ctx, req)
	}
}
