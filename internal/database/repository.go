package database

import (
	"context"
	"time"

	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

// IngestRepository is the persistence surface used by uplink ingestion.
type IngestRepository interface {
	// DeviceByEUI returns the device registered under eui, or an error
	// wrapping models.ErrNotFound.
	DeviceByEUI(ctx context.Context, eui string) (*models.Device, error)

	// SaveBatch inserts the batch and its observations in one transaction.
	// On success batch.ID and each observation's BatchID are set. On failure
	// nothing is written.
	SaveBatch(ctx context.Context, batch *models.ObservationBatch, observations []models.Observation) error
}

// QueryRepository reads stored observations on behalf of a user.
type QueryRepository interface {
	// OwnedDevice returns the device when it exists and belongs to userID,
	// or an error wrapping models.ErrNotFound.
	OwnedDevice(ctx context.Context, userID, deviceID int64) (*models.Device, error)

	// QueryObservations returns observations of the user's devices matching
	// filter, newest batch first.
	QueryObservations(ctx context.Context, userID int64, filter models.ObservationFilter) ([]models.ObservationRecord, error)

	// QuerySeries returns the points recorded for one variable path of a
	// device, newest first.
	QuerySeries(ctx context.Context, deviceID int64, variablePath string, start, end *time.Time, limit int) ([]models.SeriesPoint, error)
}

// AccountRepository persists users, productive units and devices.
type AccountRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByToken(ctx context.Context, token string) (*models.User, error)
	UserByResetToken(ctx context.Context, resetToken string) (*models.User, error)
	SetResetToken(ctx context.Context, userID int64, resetToken string) error
	// UpdatePassword stores a new hash and clears any pending reset token.
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error

	CreateProductiveUnit(ctx context.Context, unit *models.ProductiveUnit) error
	ProductiveUnitByID(ctx context.Context, userID, unitID int64) (*models.ProductiveUnit, error)
	ListProductiveUnits(ctx context.Context, userID int64) ([]models.ProductiveUnit, error)

	CreateDevice(ctx context.Context, device *models.Device) error
	ListDevices(ctx context.Context, userID int64) ([]models.Device, error)
	DeleteDevice(ctx context.Context, userID, deviceID int64) error
}
