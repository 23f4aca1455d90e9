package server

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the health service name reported next to the overall ("")
// status.
const ServiceName = "agrotelemetry"

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker implements the gRPC health checking protocol. Statuses are
// refreshed by Probe, either on demand or periodically through Run.
type HealthChecker struct {
	grpc_health_v1.UnimplementedHealthServer
	db     Pinger
	logger *logrus.Logger

	mu     sync.RWMutex
	status map[string]grpc_health_v1.HealthCheckResponse_ServingStatus
}

func NewHealthChecker(db Pinger, logger *logrus.Logger) *HealthChecker {
	h := &HealthChecker{
		db:     db,
		logger: logger,
		status: make(map[string]grpc_health_v1.HealthCheckResponse_ServingStatus),
	}
	h.setAll(grpc_health_v1.HealthCheckResponse_UNKNOWN)
	return h
}

func (h *HealthChecker) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if st, ok := h.status[req.Service]; ok {
		return &grpc_health_v1.HealthCheckResponse{Status: st}, nil
	}
	return nil, status.Error(codes.NotFound, "unknown service")
}

func (h *HealthChecker) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	return status.Error(codes.Unimplemented, "watching is not supported")
}

// SetServingStatus sets the serving status of a service
func (h *HealthChecker) SetServingStatus(service string, st grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status[service] = st
}

func (h *HealthChecker) setAll(st grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.SetServingStatus("", st)
	h.SetServingStatus(ServiceName, st)
}

// Probe pings the database once and records SERVING or NOT_SERVING.
func (h *HealthChecker) Probe(ctx context.Context) {
	if h.db == nil {
		h.setAll(grpc_health_v1.HealthCheckResponse_SERVING)
		return
	}
	if err := h.db.Ping(ctx); err != nil {
		h.logger.WithError(err).Warn("gRPC health: database unreachable")
		h.setAll(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		return
	}
	h.setAll(grpc_health_v1.HealthCheckResponse_SERVING)
}

// Run probes every interval until ctx is cancelled, then reports
// NOT_SERVING.
func (h *HealthChecker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.probeWithTimeout(ctx, interval)
	for {
		select {
		case <-ctx.Done():
			h.setAll(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
			return
		case <-ticker.C:
			h.probeWithTimeout(ctx, interval)
		}
	}
}

func (h *HealthChecker) probeWithTimeout(ctx context.Context, timeout time.Duration) {
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	h.Probe(pctx)
}
