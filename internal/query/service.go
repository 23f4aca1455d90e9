// Package query reads stored observations on behalf of an authenticated user.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/agrotelemetry/internal/database"
	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

// Service answers observation and series queries. Limits are expected to be
// validated by the caller.
type Service struct {
	repo   database.QueryRepository
	logger *logrus.Logger
}

func NewService(repo database.QueryRepository, logger *logrus.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Query returns the observations of userID's devices that match filter,
// newest batch first.
func (s *Service) Query(ctx context.Context, userID int64, filter models.ObservationFilter) ([]models.ObservationRecord, error) {
	if filter.Limit < 1 {
		return nil, fmt.Errorf("limit must be positive: %w", models.ErrBadRequest)
	}
	if filter.Start != nil && filter.End != nil && filter.Start.After(*filter.End) {
		return nil, fmt.Errorf("start must not be after end: %w", models.ErrBadRequest)
	}

	records, err := s.repo.QueryObservations(ctx, userID, filter)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Observation query failed")
		return nil, fmt.Errorf("querying observations: %w: %w", models.ErrPersistence, err)
	}
	return records, nil
}

// Series returns the points of variablePath on deviceID. The device must
// belong to userID; otherwise the error wraps models.ErrNotFound.
func (s *Service) Series(ctx context.Context, userID, deviceID int64, variablePath string, start, end *time.Time, limit int) (*models.Series, error) {
	if variablePath == "" {
		return nil, fmt.Errorf("variable_path is required: %w", models.ErrBadRequest)
	}
	if limit < 1 {
		return nil, fmt.Errorf("limit must be positive: %w", models.ErrBadRequest)
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, fmt.Errorf("start must not be after end: %w", models.ErrBadRequest)
	}

	device, err := s.repo.OwnedDevice(ctx, userID, deviceID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("resolving device: %w: %w", models.ErrPersistence, err)
	}

	points, err := s.repo.QuerySeries(ctx, device.ID, variablePath, start, end, limit)
	if err != nil {
		s.logger.WithError(err).WithField("device_id", device.ID).Error("Series query failed")
		return nil, fmt.Errorf("querying series: %w: %w", models.ErrPersistence, err)
	}

	return &models.Series{
		DeviceID:     device.ID,
		EUI:          device.EUI,
		VariablePath: variablePath,
		Points:       points,
	}, nil
}
