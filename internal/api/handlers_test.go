package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/agrotelemetry/internal/accounts"
	"github.com/tejusbharadwaj/agrotelemetry/internal/ingest"
	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

func decodeBody(t *testing.T, body []byte, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body, v))
}

func TestHealth(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodGet, "/health", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		decodeBody(t, rec.Body.Bytes(), &body)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "ok", body["database"])
	})

	t.Run("database down", func(t *testing.T) {
		env := newTestEnv(t, func(d *Deps) { d.DB = fakePinger{err: errors.New("dial tcp: refused")} })
		rec := env.do(http.MethodGet, "/health", "", nil)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "degraded")
	})
}

func TestWebhook(t *testing.T) {
	tests := []struct {
		name       string
		result     *ingest.Result
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "stored",
			result:     &ingest.Result{Status: ingest.StatusOK, RID: "ab12cd34", EUI: "70B3D57ED005A1B2", Inserted: 3},
			wantStatus: http.StatusOK,
		},
		{
			name:       "soft failure still 200",
			result:     &ingest.Result{Status: ingest.StatusOK, RID: "ab12cd34", Note: ingest.NoteMissingEUI},
			wantStatus: http.StatusOK,
		},
		{
			name:       "bad secret",
			err:        fmt.Errorf("%w: invalid webhook secret", models.ErrUnauthorized),
			wantStatus: http.StatusUnauthorized,
			wantCode:   ErrCodeUnauthorized,
		},
		{
			name:       "invalid json",
			err:        fmt.Errorf("%w: invalid JSON", models.ErrBadRequest),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "persistence failure",
			err:        fmt.Errorf("saving batch: %w", models.ErrPersistence),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			var gotBody []byte
			var gotSecret string
			env.ingest.fn = func(_ context.Context, body []byte, secret string) (*ingest.Result, error) {
				gotBody, gotSecret = body, secret
				return tt.result, tt.err
			}

			rec := env.do(http.MethodPost, "/ttn/webhook", `{"end_device_ids":{}}`,
				map[string]string{headerWebhookSecret: "s3cret"})

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, `{"end_device_ids":{}}`, string(gotBody))
			assert.Equal(t, "s3cret", gotSecret)

			if tt.wantCode != "" {
				var apiErr Error
				decodeBody(t, rec.Body.Bytes(), &apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			var res map[string]any
			decodeBody(t, rec.Body.Bytes(), &res)
			assert.Equal(t, "ok", res["status"])
			assert.Contains(t, res, "inserted")
		})
	}
}

func TestWebhook_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t)
	env.ingest.fn = func(context.Context, []byte, string) (*ingest.Result, error) {
		t.Fatal("ingest must not be called")
		return nil, nil
	}

	body := `{"pad":"` + strings.Repeat("x", maxRequestBodySize) + `"}`
	rec := env.do(http.MethodPost, "/ttn/webhook", body, nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestWebhook_SecretCheckedFirst(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "small body", body: `{"end_device_ids":{}}`},
		{name: "oversized body", body: `{"pad":"` + strings.Repeat("x", maxRequestBodySize) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.ingest.secret = "s3cret"
			env.ingest.fn = func(context.Context, []byte, string) (*ingest.Result, error) {
				t.Fatal("ingest must not be called")
				return nil, nil
			}

			rec := env.do(http.MethodPost, "/ttn/webhook", tt.body,
				map[string]string{headerWebhookSecret: "wrong"})

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			var apiErr Error
			decodeBody(t, rec.Body.Bytes(), &apiErr)
			assert.Equal(t, ErrCodeUnauthorized, apiErr.Code)
		})
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/data", "/devices", "/productive-units", "/devices/1/series?variable_path=x"} {
		t.Run(target, func(t *testing.T) {
			rec := env.do(http.MethodGet, target, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			rec = env.do(http.MethodGet, target, "", map[string]string{headerAPIToken: "wrong"})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.register = func(in accounts.RegisterInput) (*accounts.Registration, error) {
		assert.Equal(t, "alice@example.com", in.Email)
		return &accounts.Registration{UserID: 7, Email: in.Email, TemporaryPassword: "abcdefghijkl", Token: testToken}, nil
	}
	env.accounts.login = func(email, password string) (string, error) {
		if password != "abcdefghijkl" {
			return "", models.ErrUnauthorized
		}
		return testToken, nil
	}

	rec := env.do(http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg map[string]any
	decodeBody(t, rec.Body.Bytes(), &reg)
	assert.Equal(t, "abcdefghijkl", reg["temporary_password"])
	assert.Equal(t, testToken, reg["token"])

	rec = env.do(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"abcdefghijkl"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login map[string]string
	decodeBody(t, rec.Body.Bytes(), &login)
	assert.Equal(t, testToken, login["token"])

	rec = env.do(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_Conflict(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.register = func(accounts.RegisterInput) (*accounts.Registration, error) {
		return nil, fmt.Errorf("%w: email already registered", models.ErrConflict)
	}

	rec := env.do(http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_MalformedBody(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/auth/register", `{"name":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.requestReset = func(email string) (string, error) {
		if email == "alice@example.com" {
			return "reset-tok", nil
		}
		return "", nil
	}
	env.accounts.confirmReset = func(token, password string) error {
		if token != "reset-tok" {
			return fmt.Errorf("%w: invalid reset token", models.ErrBadRequest)
		}
		return nil
	}

	rec := env.do(http.MethodPost, "/auth/reset/request", `{"email":"alice@example.com"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var known resetResponse
	decodeBody(t, rec.Body.Bytes(), &known)
	assert.Equal(t, "reset-tok", known.ResetToken)

	rec = env.do(http.MethodPost, "/auth/reset/request", `{"email":"nobody@example.com"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var unknown resetResponse
	decodeBody(t, rec.Body.Bytes(), &unknown)
	assert.Equal(t, known.Message, unknown.Message)
	assert.NotContains(t, rec.Body.String(), "reset_token")

	rec = env.do(http.MethodPost, "/auth/reset/confirm", `{"reset_token":"reset-tok","new_password":"n3w-pass"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/auth/reset/confirm", `{"reset_token":"bogus","new_password":"n3w-pass"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductiveUnits(t *testing.T) {
	env := newTestEnv(t)
	area := 12.5
	env.accounts.createUnit = func(userID int64, in accounts.ProductiveUnitInput) (*models.ProductiveUnit, error) {
		assert.Equal(t, testUser.ID, userID)
		return &models.ProductiveUnit{ID: 3, UserID: userID, Name: in.Name, Area: in.Area}, nil
	}
	env.accounts.listUnits = func(userID int64) ([]models.ProductiveUnit, error) {
		return []models.ProductiveUnit{{ID: 3, UserID: userID, Name: "North field", Area: &area}}, nil
	}

	rec := env.do(http.MethodPost, "/productive-units", `{"name":"North field","area":12.5}`, authed())
	require.Equal(t, http.StatusCreated, rec.Code)
	var unit models.ProductiveUnit
	decodeBody(t, rec.Body.Bytes(), &unit)
	assert.Equal(t, "North field", unit.Name)
	require.NotNil(t, unit.Area)
	assert.Equal(t, 12.5, *unit.Area)

	rec = env.do(http.MethodGet, "/productive-units", "", authed())
	require.Equal(t, http.StatusOK, rec.Code)
	var units []models.ProductiveUnit
	decodeBody(t, rec.Body.Bytes(), &units)
	assert.Len(t, units, 1)
}

func TestDevices(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.addDevice = func(userID int64, in accounts.DeviceInput) (*models.Device, error) {
		if in.ProductiveUnitID != 3 {
			return nil, fmt.Errorf("%w: productive unit", models.ErrNotFound)
		}
		return &models.Device{ID: 11, UserID: userID, ProductiveUnitID: 3, EUI: in.EUI}, nil
	}
	env.accounts.listDevices = func(int64) ([]models.Device, error) {
		return []models.Device{}, nil
	}
	env.accounts.deleteDevice = func(userID, deviceID int64) error {
		if deviceID != 11 {
			return fmt.Errorf("%w: device", models.ErrNotFound)
		}
		return nil
	}

	rec := env.do(http.MethodPost, "/devices", `{"productive_unit_id":3,"eui":"70B3D57ED005A1B2"}`, authed())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/devices", `{"productive_unit_id":4,"eui":"70B3D57ED005A1B2"}`, authed())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/devices", "", authed())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = env.do(http.MethodDelete, "/devices/11", "", authed())
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = env.do(http.MethodDelete, "/devices/12", "", authed())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodDelete, "/devices/abc", "", authed())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestData(t *testing.T) {
	env := newTestEnv(t)
	observedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var got models.ObservationFilter
	env.query.query = func(_ context.Context, userID int64, filter models.ObservationFilter) ([]models.ObservationRecord, error) {
		assert.Equal(t, testUser.ID, userID)
		got = filter
		return []models.ObservationRecord{{
			EUI: "70B3D57ED005A1B2", DeviceID: 11, ObservedAt: observedAt, Origin: models.OriginDecoded,
			VariableName: "temperature", VariablePath: "decoded.temperature", Value: 21.5,
		}}, nil
	}

	rec := env.do(http.MethodGet,
		"/data?eui=70B3D57ED005A1B2&variable_name=temperature&start=2026-03-01T00:00:00Z&end=2026-03-02T00:00:00Z&limit=10",
		"", authed())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "70B3D57ED005A1B2", got.DeviceEUI)
	assert.Equal(t, "temperature", got.VariableName)
	assert.Equal(t, 10, got.Limit)
	require.NotNil(t, got.Start)
	require.NotNil(t, got.End)

	var body dataResponse
	decodeBody(t, rec.Body.Bytes(), &body)
	require.Len(t, body.Items, 1)
	assert.Equal(t, 21.5, body.Items[0].Value)
}

func TestData_InvalidParams(t *testing.T) {
	env := newTestEnv(t)
	for _, target := range []string{
		"/data?limit=0",
		"/data?limit=5000",
		"/data?start=yesterday",
		"/data?start=2026-03-02T00:00:00Z&end=2026-03-01T00:00:00Z",
	} {
		rec := env.do(http.MethodGet, target, "", authed())
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestSeries(t *testing.T) {
	env := newTestEnv(t)
	env.query.series = func(_ context.Context, userID, deviceID int64, path string, _, _ *time.Time, limit int) (*models.Series, error) {
		if deviceID != 11 {
			return nil, fmt.Errorf("%w: device", models.ErrNotFound)
		}
		return &models.Series{
			DeviceID: deviceID, EUI: "70B3D57ED005A1B2", VariablePath: path,
			Points: []models.SeriesPoint{{Time: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), Value: 21.5}},
		}, nil
	}

	rec := env.do(http.MethodGet, "/devices/11/series?variable_path=decoded.temperature", "", authed())
	require.Equal(t, http.StatusOK, rec.Code)
	var series map[string]any
	decodeBody(t, rec.Body.Bytes(), &series)
	assert.Equal(t, "decoded.temperature", series["variable_path"])
	points := series["points"].([]any)
	require.Len(t, points, 1)
	assert.Equal(t, 21.5, points[0].(map[string]any)["v"])

	rec = env.do(http.MethodGet, "/devices/12/series?variable_path=decoded.temperature", "", authed())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/devices/11/series", "", authed())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/ttn/webhook", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
