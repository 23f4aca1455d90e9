package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/agrotelemetry/internal/accounts"
	"github.com/tejusbharadwaj/agrotelemetry/internal/config"
	"github.com/tejusbharadwaj/agrotelemetry/internal/ingest"
	"github.com/tejusbharadwaj/agrotelemetry/internal/metrics"
	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

const testToken = "tok-alice"

var testUser = &models.User{ID: 7, Name: "Alice", Email: "alice@example.com", Role: "owner"}

// fakeIngester accepts every secret unless secret is set.
type fakeIngester struct {
	secret string
	fn     func(ctx context.Context, body []byte, secret string) (*ingest.Result, error)
}

func (f *fakeIngester) Authorize(secret string) error {
	if f.secret != "" && secret != f.secret {
		return models.ErrUnauthorized
	}
	return nil
}

func (f *fakeIngester) Ingest(ctx context.Context, body []byte, secret string) (*ingest.Result, error) {
	return f.fn(ctx, body, secret)
}

type fakeQuerier struct {
	query  func(ctx context.Context, userID int64, filter models.ObservationFilter) ([]models.ObservationRecord, error)
	series func(ctx context.Context, userID, deviceID int64, path string, start, end *time.Time, limit int) (*models.Series, error)
}

func (f *fakeQuerier) Query(ctx context.Context, userID int64, filter models.ObservationFilter) ([]models.ObservationRecord, error) {
	return f.query(ctx, userID, filter)
}

func (f *fakeQuerier) Series(ctx context.Context, userID, deviceID int64, path string, start, end *time.Time, limit int) (*models.Series, error) {
	return f.series(ctx, userID, deviceID, path, start, end, limit)
}

// fakeAccounts authenticates testToken as testUser. Unset hooks panic, which
// the recovery middleware turns into a 500.
type fakeAccounts struct {
	register     func(in accounts.RegisterInput) (*accounts.Registration, error)
	login        func(email, password string) (string, error)
	requestReset func(email string) (string, error)
	confirmReset func(token, password string) error
	createUnit   func(userID int64, in accounts.ProductiveUnitInput) (*models.ProductiveUnit, error)
	listUnits    func(userID int64) ([]models.ProductiveUnit, error)
	addDevice    func(userID int64, in accounts.DeviceInput) (*models.Device, error)
	listDevices  func(userID int64) ([]models.Device, error)
	deleteDevice func(userID, deviceID int64) error
}

func (f *fakeAccounts) Register(_ context.Context, in accounts.RegisterInput) (*accounts.Registration, error) {
	return f.register(in)
}

func (f *fakeAccounts) Login(_ context.Context, email, password string) (string, error) {
	return f.login(email, password)
}

func (f *fakeAccounts) RequestReset(_ context.Context, email string) (string, error) {
	return f.requestReset(email)
}

func (f *fakeAccounts) ConfirmReset(_ context.Context, token, password string) error {
	return f.confirmReset(token, password)
}

func (f *fakeAccounts) Authenticate(_ context.Context, token string) (*models.User, error) {
	if token == testToken {
		return testUser, nil
	}
	return nil, models.ErrUnauthorized
}

func (f *fakeAccounts) CreateProductiveUnit(_ context.Context, userID int64, in accounts.ProductiveUnitInput) (*models.ProductiveUnit, error) {
	return f.createUnit(userID, in)
}

func (f *fakeAccounts) ListProductiveUnits(_ context.Context, userID int64) ([]models.ProductiveUnit, error) {
	return f.listUnits(userID)
}

func (f *fakeAccounts) RegisterDevice(_ context.Context, userID int64, in accounts.DeviceInput) (*models.Device, error) {
	return f.addDevice(userID, in)
}

func (f *fakeAccounts) ListDevices(_ context.Context, userID int64) ([]models.Device, error) {
	return f.listDevices(userID)
}

func (f *fakeAccounts) DeleteDevice(_ context.Context, userID, deviceID int64) error {
	return f.deleteDevice(userID, deviceID)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type testEnv struct {
	ingest   *fakeIngester
	query    *fakeQuerier
	accounts *fakeAccounts
	metrics  *metrics.Metrics
	handler  http.Handler
}

type envOption func(*Deps)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	reg := prometheus.NewRegistry()

	env := &testEnv{
		ingest:   &fakeIngester{},
		query:    &fakeQuerier{},
		accounts: &fakeAccounts{},
		metrics:  metrics.New(reg),
	}
	deps := Deps{
		Config:   config.ServerConfig{Port: 0, Host: "127.0.0.1"},
		Logger:   logger,
		Metrics:  env.metrics,
		Gatherer: reg,
		Ingest:   env.ingest,
		Query:    env.query,
		Accounts: env.accounts,
		DB:       fakePinger{},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv, err := New(deps)
	require.NoError(t, err)
	env.handler = srv.Handler()
	return env
}

func (e *testEnv) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func authed() map[string]string {
	return map[string]string{headerAPIToken: testToken}
}
