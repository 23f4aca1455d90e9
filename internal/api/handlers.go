package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tejusbharadwaj/agrotelemetry/internal/accounts"
	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

const (
	healthTimeout = 2 * time.Second

	resetRequestMessage = "If the e-mail exists, a reset token was issued."
	resetConfirmMessage = "Password updated."
)

// handleHealth reports liveness and whether the database answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		s.logger.WithError(err).Warn("Health check: database unreachable")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "degraded",
			"database": "unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

// handleWebhook ingests one network-server uplink. Deliveries that cannot
// be attributed to a device are still answered with 200. The secret is
// checked before the body is read.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get(headerWebhookSecret)
	if err := s.ingest.Authorize(secret); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
			return
		}
		writeBadRequest(w, "could not read request body")
		return
	}

	result, err := s.ingest.Ingest(r.Context(), body, secret)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in accounts.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	reg, err := s.accounts.Register(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	token, err := s.accounts.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
}

func (s *Server) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var in resetRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	token, err := s.accounts.RequestReset(r.Context(), in.Email)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{Message: resetRequestMessage, ResetToken: token})
}

type resetConfirm struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var in resetConfirm
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := s.accounts.ConfirmReset(r.Context(), in.ResetToken, in.NewPassword); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": resetConfirmMessage})
}

func (s *Server) handleCreateProductiveUnit(w http.ResponseWriter, r *http.Request) {
	var in accounts.ProductiveUnitInput
	if !decodeJSON(w, r, &in) {
		return
	}
	unit, err := s.accounts.CreateProductiveUnit(r.Context(), userFrom(r.Context()).ID, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, unit)
}

func (s *Server) handleListProductiveUnits(w http.ResponseWriter, r *http.Request) {
	units, err := s.accounts.ListProductiveUnits(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, units)
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var in accounts.DeviceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	device, err := s.accounts.RegisterDevice(r.Context(), userFrom(r.Context()).ID, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, device)
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.accounts.ListDevices(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.accounts.DeleteDevice(r.Context(), userFrom(r.Context()).ID, deviceID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type dataResponse struct {
	Items []models.ObservationRecord `json:"items"`
}

// handleData serves GET /data: observations of the caller's devices.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	filter, err := s.validator.DataFilter(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	items, err := s.query.Query(r.Context(), userFrom(r.Context()).ID, filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Items: items})
}

// handleSeries serves GET /devices/{id}/series.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := pathID(w, r)
	if !ok {
		return
	}
	params, err := s.validator.Series(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	series, err := s.query.Series(r.Context(), userFrom(r.Context()).ID, deviceID,
		params.VariablePath, params.Start, params.End, params.Limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeBadRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}
