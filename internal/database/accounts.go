package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

const (
	userColumns = "id, name, email, password_hash, role, token, reset_token, created_at"
	unitColumns = "id, user_id, name, area, description, qualities, kind, category, address, georeference, created_at"
)

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var reset sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Token, &reset, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.ResetToken = stringPtr(reset)
	return &u, nil
}

func scanUnit(row rowScanner) (*models.ProductiveUnit, error) {
	var u models.ProductiveUnit
	var area sql.NullFloat64
	var description, qualities, kind, category, address, georeference sql.NullString
	if err := row.Scan(&u.ID, &u.UserID, &u.Name, &area, &description, &qualities,
		&kind, &category, &address, &georeference, &u.CreatedAt); err != nil {
		return nil, err
	}
	if area.Valid {
		a := area.Float64
		u.Area = &a
	}
	u.Description = stringPtr(description)
	u.Qualities = stringPtr(qualities)
	u.Kind = stringPtr(kind)
	u.Category = stringPtr(category)
	u.Address = stringPtr(address)
	u.Georeference = stringPtr(georeference)
	return &u, nil
}

// CreateUser inserts a user and fills in its id and creation time.
func (r *PostgresRepo) CreateUser(ctx context.Context, user *models.User) error {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO users (name, email, password_hash, role, token, reset_token)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `, user.Name, user.Email, user.PasswordHash, user.Role, user.Token, user.ResetToken,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, models.ErrConflict)
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *PostgresRepo) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// UserByEmail retrieves a user by e-mail address.
func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, "email = $1", email)
}

// UserByToken retrieves a user by API token.
func (r *PostgresRepo) UserByToken(ctx context.Context, token string) (*models.User, error) {
	return r.getUser(ctx, "token = $1", token)
}

// UserByResetToken retrieves a user by pending password reset token.
func (r *PostgresRepo) UserByResetToken(ctx context.Context, resetToken string) (*models.User, error) {
	return r.getUser(ctx, "reset_token = $1", resetToken)
}

// SetResetToken stores a password reset token for the user.
func (r *PostgresRepo) SetResetToken(ctx context.Context, userID int64, resetToken string) error {
	return r.updateUser(ctx, "UPDATE users SET reset_token = $1 WHERE id = $2", resetToken, userID)
}

// UpdatePassword replaces the password hash and clears the reset token.
func (r *PostgresRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.updateUser(ctx, "UPDATE users SET password_hash = $1, reset_token = NULL WHERE id = $2", passwordHash, userID)
}

func (r *PostgresRepo) updateUser(ctx context.Context, query string, value any, userID int64) error {
	result, err := r.db.ExecContext(ctx, query, value, userID)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	return nil
}

// CreateProductiveUnit inserts a productive unit.
func (r *PostgresRepo) CreateProductiveUnit(ctx context.Context, unit *models.ProductiveUnit) error {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO productive_units (user_id, name, area, description, qualities, kind, category, address, georeference)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at
    `, unit.UserID, unit.Name, unit.Area, unit.Description, unit.Qualities,
		unit.Kind, unit.Category, unit.Address, unit.Georeference,
	).Scan(&unit.ID, &unit.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating productive unit: %w", err)
	}
	return nil
}

// ProductiveUnitByID returns a unit only when it belongs to userID.
func (r *PostgresRepo) ProductiveUnitByID(ctx context.Context, userID, unitID int64) (*models.ProductiveUnit, error) {
	u, err := scanUnit(r.db.QueryRowContext(ctx,
		"SELECT "+unitColumns+" FROM productive_units WHERE id = $1 AND user_id = $2", unitID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("productive unit %d: %w", unitID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying productive unit: %w", err)
	}
	return u, nil
}

// ListProductiveUnits returns the user's units, newest first.
func (r *PostgresRepo) ListProductiveUnits(ctx context.Context, userID int64) ([]models.ProductiveUnit, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+unitColumns+" FROM productive_units WHERE user_id = $1 ORDER BY id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("listing productive units: %w", err)
	}
	defer rows.Close()

	units := []models.ProductiveUnit{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning productive unit: %w", err)
		}
		units = append(units, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating productive units: %w", err)
	}
	return units, nil
}

// CreateDevice registers a device. A duplicate EUI yields models.ErrConflict.
func (r *PostgresRepo) CreateDevice(ctx context.Context, device *models.Device) error {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO devices (user_id, productive_unit_id, brand, device_identifier, kind, eui)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `, device.UserID, device.ProductiveUnitID, device.Brand, device.DeviceIdentifier, device.Kind, device.EUI,
	).Scan(&device.ID, &device.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("eui %s already registered: %w", device.EUI, models.ErrConflict)
		}
		return fmt.Errorf("creating device: %w", err)
	}
	return nil
}

// ListDevices returns the user's devices, newest first.
func (r *PostgresRepo) ListDevices(ctx context.Context, userID int64) ([]models.Device, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE user_id = $1 ORDER BY id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	devices := []models.Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// DeleteDevice removes a device owned by userID together with its batches
// and observations.
func (r *PostgresRepo) DeleteDevice(ctx context.Context, userID, deviceID int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = $1 AND user_id = $2", deviceID, userID)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("device %d: %w", deviceID, models.ErrNotFound)
	}
	return nil
}
