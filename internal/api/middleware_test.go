package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/agrotelemetry/internal/config"
	"github.com/tejusbharadwaj/agrotelemetry/internal/ingest"
	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", "", nil)
	assert.Len(t, rec.Header().Get(headerRequestID), 36)

	rec = env.do(http.MethodGet, "/health", "", map[string]string{headerRequestID: "req-42"})
	assert.Equal(t, "req-42", rec.Header().Get(headerRequestID))
}

func TestRecovery(t *testing.T) {
	env := newTestEnv(t)
	// listUnits is unset, so the fake panics
	rec := env.do(http.MethodGet, "/productive-units", "", authed())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrCodeInternal)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) { d.Config.CORSOrigins = []string{"https://app.example.com"} })

	t.Run("allowed origin", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/health", "", map[string]string{"Origin": "https://app.example.com"})
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/health", "", map[string]string{"Origin": "https://evil.example.com"})
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		rec := env.do(http.MethodOptions, "/data", "", map[string]string{
			"Origin":                        "https://app.example.com",
			"Access-Control-Request-Method": "GET",
		})
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), headerAPIToken)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.listDevices = func(int64) ([]models.Device, error) { return []models.Device{}, nil }

	env.do(http.MethodGet, "/devices", "", authed())
	assert.Equal(t, 1, testutil.CollectAndCount(env.metrics.HTTPRequests))

	rec := env.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "agrotelemetry_http_requests_total")
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) {
		d.RateLimit = config.RateLimitConfig{RPS: 0.001, Burst: 2, Clients: 8}
	})
	env.accounts.login = func(string, string) (string, error) { return "", models.ErrUnauthorized }

	for i := 0; i < 2; i++ {
		rec := env.do(http.MethodPost, "/auth/login", `{"email":"a@b.c","password":"x"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := env.do(http.MethodPost, "/auth/login", `{"email":"a@b.c","password":"x"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.RateLimited))

	// health is not rate limited
	rec = env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitSkipsWebhook(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) {
		d.RateLimit = config.RateLimitConfig{RPS: 0.001, Burst: 2, Clients: 8}
	})
	env.ingest.fn = func(context.Context, []byte, string) (*ingest.Result, error) {
		return &ingest.Result{Status: ingest.StatusOK, RID: "ab12cd34", Inserted: 1}, nil
	}

	for i := 0; i < 10; i++ {
		rec := env.do(http.MethodPost, "/ttn/webhook", `{"end_device_ids":{}}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code, "delivery %d", i)
	}
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.RateLimited))

	// the rest of the API is still limited
	env.accounts.login = func(string, string) (string, error) { return "", models.ErrUnauthorized }
	for i := 0; i < 2; i++ {
		env.do(http.MethodPost, "/auth/login", `{"email":"a@b.c","password":"x"}`, nil)
	}
	rec := env.do(http.MethodPost, "/auth/login", `{"email":"a@b.c","password":"x"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestClientLimiter(t *testing.T) {
	limiter, err := newClientLimiter(config.RateLimitConfig{RPS: 0.001, Burst: 1, Clients: 1})
	require.NoError(t, err)

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.False(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.2"))
	// the LRU evicted 10.0.0.1, so it starts with a fresh bucket
	assert.True(t, limiter.allow("10.0.0.1"))

	disabled, err := newClientLimiter(config.RateLimitConfig{})
	require.NoError(t, err)
	assert.Nil(t, disabled)
}
