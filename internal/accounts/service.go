// Package accounts manages users, API tokens, productive units and devices.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/tejusbharadwaj/agrotelemetry/internal/database"
	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

const defaultRole = "user"

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Registration is returned once, at account creation. TemporaryPassword is
// empty in production.
type Registration struct {
	UserID            int64  `json:"user_id"`
	Email             string `json:"email"`
	TemporaryPassword string `json:"temporary_password,omitempty"`
	Token             string `json:"token"`
}

// ProductiveUnitInput is the body of a productive unit creation request.
type ProductiveUnitInput struct {
	Name         string   `json:"name"`
	Area         *float64 `json:"area"`
	Description  *string  `json:"description"`
	Qualities    *string  `json:"qualities"`
	Kind         *string  `json:"kind"`
	Category     *string  `json:"category"`
	Address      *string  `json:"address"`
	Georeference *string  `json:"georeference"`
}

// DeviceInput is the body of a device registration request.
type DeviceInput struct {
	ProductiveUnitID int64   `json:"productive_unit_id"`
	Brand            *string `json:"brand"`
	DeviceIdentifier *string `json:"device_identifier"`
	Kind             *string `json:"kind"`
	EUI              string  `json:"eui"`
}

// Service implements the account flows on top of an AccountRepository.
type Service struct {
	repo       database.AccountRepository
	logger     *logrus.Logger
	prod       bool
	bcryptCost int
}

// Option configures a Service.
type Option func(*Service)

// WithProduction hides temporary passwords and reset tokens from responses.
func WithProduction(prod bool) Option {
	return func(s *Service) { s.prod = prod }
}

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func NewService(repo database.AccountRepository, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// storeError keeps NotFound and Conflict visible to the caller and marks
// everything else as a persistence failure.
func storeError(op string, err error) error {
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrConflict) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrPersistence, err)
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("password too long: %w", models.ErrBadRequest)
	}
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(h), nil
}

// Register creates a user with a generated API token and temporary password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Registration, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required: %w", models.ErrBadRequest)
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = defaultRole
	}

	password, err := newTemporaryPassword()
	if err != nil {
		return nil, err
	}
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Token:        token,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, storeError("registering user", err)
	}

	s.logger.WithField("user_id", user.ID).Info("Registered user")

	reg := &Registration{UserID: user.ID, Email: user.Email, Token: user.Token}
	if !s.prod {
		reg.TemporaryPassword = password
	}
	return reg, nil
}

// Login exchanges e-mail and password for the user's API token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return "", fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}
	if err != nil {
		return "", storeError("looking up user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}
	return user.Token, nil
}

// RequestReset issues a password reset token. The outcome for unknown
// addresses is indistinguishable from a successful request. The token is
// returned only outside production.
func (s *Service) RequestReset(ctx context.Context, email string) (string, error) {
	user, err := s.repo.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", storeError("looking up user", err)
	}

	resetToken, err := newToken()
	if err != nil {
		return "", err
	}
	if err := s.repo.SetResetToken(ctx, user.ID, resetToken); err != nil {
		return "", storeError("storing reset token", err)
	}

	s.logger.WithField("user_id", user.ID).Info("Issued password reset token")
	if s.prod {
		return "", nil
	}
	return resetToken, nil
}

// ConfirmReset sets a new password for the holder of resetToken and
// invalidates the token.
func (s *Service) ConfirmReset(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return fmt.Errorf("invalid reset token: %w", models.ErrBadRequest)
	}
	if newPassword == "" {
		return fmt.Errorf("new password is required: %w", models.ErrBadRequest)
	}

	user, err := s.repo.UserByResetToken(ctx, resetToken)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("invalid reset token: %w", models.ErrBadRequest)
	}
	if err != nil {
		return storeError("looking up reset token", err)
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return storeError("updating password", err)
	}
	return nil
}

// Authenticate resolves an API token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("missing API token: %w", models.ErrUnauthorized)
	}
	user, err := s.repo.UserByToken(ctx, token)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("invalid API token: %w", models.ErrUnauthorized)
	}
	if err != nil {
		return nil, storeError("looking up token", err)
	}
	return user, nil
}

// CreateProductiveUnit creates a unit owned by userID.
func (s *Service) CreateProductiveUnit(ctx context.Context, userID int64, in ProductiveUnitInput) (*models.ProductiveUnit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", models.ErrBadRequest)
	}

	unit := &models.ProductiveUnit{
		UserID:       userID,
		Name:         name,
		Area:         in.Area,
		Description:  in.Description,
		Qualities:    in.Qualities,
		Kind:         in.Kind,
		Category:     in.Category,
		Address:      in.Address,
		Georeference: in.Georeference,
	}
	if err := s.repo.CreateProductiveUnit(ctx, unit); err != nil {
		return nil, storeError("creating productive unit", err)
	}
	return unit, nil
}

// ListProductiveUnits returns userID's units, newest first.
func (s *Service) ListProductiveUnits(ctx context.Context, userID int64) ([]models.ProductiveUnit, error) {
	units, err := s.repo.ListProductiveUnits(ctx, userID)
	if err != nil {
		return nil, storeError("listing productive units", err)
	}
	return units, nil
}

// RegisterDevice registers a device under one of userID's productive units.
// The EUI is trimmed and must be unique across all users.
func (s *Service) RegisterDevice(ctx context.Context, userID int64, in DeviceInput) (*models.Device, error) {
	eui := strings.TrimSpace(in.EUI)
	if eui == "" {
		return nil, fmt.Errorf("eui is required: %w", models.ErrBadRequest)
	}

	unit, err := s.repo.ProductiveUnitByID(ctx, userID, in.ProductiveUnitID)
	if err != nil {
		return nil, storeError("resolving productive unit", err)
	}

	device := &models.Device{
		UserID:           userID,
		ProductiveUnitID: unit.ID,
		Brand:            in.Brand,
		DeviceIdentifier: in.DeviceIdentifier,
		Kind:             in.Kind,
		EUI:              eui,
	}
	if err := s.repo.CreateDevice(ctx, device); err != nil {
		return nil, storeError("registering device", err)
	}

	s.logger.WithFields(logrus.Fields{
		"device_id": device.ID,
		"eui":       device.EUI,
	}).Info("Registered device")
	return device, nil
}

// ListDevices returns userID's devices, newest first.
func (s *Service) ListDevices(ctx context.Context, userID int64) ([]models.Device, error) {
	devices, err := s.repo.ListDevices(ctx, userID)
	if err != nil {
		return nil, storeError("listing devices", err)
	}
	return devices, nil
}

// DeleteDevice removes one of userID's devices with all its stored data.
func (s *Service) DeleteDevice(ctx context.Context, userID, deviceID int64) error {
	if err := s.repo.DeleteDevice(ctx, userID, deviceID); err != nil {
		return storeError("deleting device", err)
	}
	s.logger.WithField("device_id", deviceID).Info("Deleted device")
	return nil
}
