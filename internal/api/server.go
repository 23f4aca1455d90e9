// Package api is the HTTP boundary of the service: the network-server
// webhook, account and device management, and the observation query API.
//
//	srv, err := api.New(deps)
//	if err := srv.Start(); err != nil { ... }
//	defer srv.Close(ctx)
//
// Authenticated routes expect the user's API token in X-API-Token.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/agrotelemetry/internal/accounts"
	"github.com/tejusbharadwaj/agrotelemetry/internal/config"
	"github.com/tejusbharadwaj/agrotelemetry/internal/ingest"
	"github.com/tejusbharadwaj/agrotelemetry/internal/metrics"
	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

const readHeaderTimeout = 5 * time.Second

// Ingester accepts webhook deliveries.
type Ingester interface {
	Authorize(secretHeader string) error
	Ingest(ctx context.Context, body []byte, secretHeader string) (*ingest.Result, error)
}

// Querier reads stored observations.
type Querier interface {
	Query(ctx context.Context, userID int64, filter models.ObservationFilter) ([]models.ObservationRecord, error)
	Series(ctx context.Context, userID, deviceID int64, variablePath string, start, end *time.Time, limit int) (*models.Series, error)
}

// AccountService covers users, productive units and devices.
type AccountService interface {
	Register(ctx context.Context, in accounts.RegisterInput) (*accounts.Registration, error)
	Login(ctx context.Context, email, password string) (string, error)
	RequestReset(ctx context.Context, email string) (string, error)
	ConfirmReset(ctx context.Context, resetToken, newPassword string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
	CreateProductiveUnit(ctx context.Context, userID int64, in accounts.ProductiveUnitInput) (*models.ProductiveUnit, error)
	ListProductiveUnits(ctx context.Context, userID int64) ([]models.ProductiveUnit, error)
	RegisterDevice(ctx context.Context, userID int64, in accounts.DeviceInput) (*models.Device, error)
	ListDevices(ctx context.Context, userID int64) ([]models.Device, error)
	DeleteDevice(ctx context.Context, userID, deviceID int64) error
}

// Pinger reports database reachability for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.ServerConfig
	Limits    config.QueryConfig
	RateLimit config.RateLimitConfig
	Logger    *logrus.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Ingest    Ingester
	Query     Querier
	Accounts  AccountService
	DB        Pinger
}

// Server is the HTTP API server.
type Server struct {
	cfg       config.ServerConfig
	logger    *logrus.Logger
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	ingest    Ingester
	query     Querier
	accounts  AccountService
	db        Pinger
	validator *RequestValidator
	limiter   *clientLimiter
	server    *http.Server
}

// New creates a new API server with the given dependencies. The server is
// not listening until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if deps.Ingest == nil || deps.Query == nil || deps.Accounts == nil {
		return nil, errors.New("ingest, query and accounts services are required")
	}

	limiter, err := newClientLimiter(deps.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("creating rate limiter: %w", err)
	}

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		gatherer:  gatherer,
		ingest:    deps.Ingest,
		query:     deps.Query,
		accounts:  deps.Accounts,
		db:        deps.DB,
		validator: NewRequestValidator(deps.Limits),
		limiter:   limiter,
	}, nil
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}()

	s.logger.WithField("addr", ln.Addr().String()).Info("HTTP server listening")
	return nil
}

// Close waits for in-flight requests until ctx expires.
func (s *Server) Close(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
