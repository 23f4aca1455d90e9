package middleware

import (
	"context"
	"path"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/tejusbharadwaj/agrotelemetry/internal/metrics"
)

func NewMetricsInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)
		if m == nil {
			return resp, err
		}

		// Record metrics
		duration := time.Since(start).Seconds()
		method := path.Base(info.FullMethod)

		m.GRPCRequests.WithLabelValues(method, status.Code(err).String()).Inc()
		m.GRPCLatency.WithLabelValues(method).Observe(duration)

		return resp, err
	}
}
