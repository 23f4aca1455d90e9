package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

const deviceColumns = "id, user_id, productive_unit_id, brand, device_identifier, kind, eui, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*models.Device, error) {
	var d models.Device
	var brand, identifier, kind sql.NullString
	if err := row.Scan(&d.ID, &d.UserID, &d.ProductiveUnitID, &brand, &identifier, &kind, &d.EUI, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Brand = stringPtr(brand)
	d.DeviceIdentifier = stringPtr(identifier)
	d.Kind = stringPtr(kind)
	return &d, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// DeviceByEUI looks up a registered device by its EUI.
func (r *PostgresRepo) DeviceByEUI(ctx context.Context, eui string) (*models.Device, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+deviceColumns+" FROM devices WHERE eui = $1", eui)
	d, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("device %s: %w", eui, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying device by eui: %w", err)
	}
	return d, nil
}

// SaveBatch writes one observation batch and its observations atomically.
//
// Transaction Flow:
//  1. Begin transaction
//  2. Insert the batch, returning its id
//  3. Prepare the observation insert and execute it per value
//  4. Commit, or roll back on any failure
func (r *PostgresRepo) SaveBatch(ctx context.Context, batch *models.ObservationBatch, observations []models.Observation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // rollback if not committed

	err = tx.QueryRowContext(ctx, `
        INSERT INTO observation_batches (device_id, observed_at, origin, raw_json, decoded_json, normalized_json)
        VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6::jsonb)
        RETURNING id, created_at
    `,
		batch.DeviceID,
		batch.ObservedAt,
		string(batch.Origin),
		nullJSON(batch.RawJSON),
		nullJSON(batch.DecodedJSON),
		nullJSON(batch.NormalizedJSON),
	).Scan(&batch.ID, &batch.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert observation batch: %w", err)
	}

	if len(observations) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
            INSERT INTO observations (batch_id, variable_name, variable_path, unit, value)
            VALUES ($1, $2, $3, $4, $5)
        `)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i := range observations {
			o := &observations[i]
			o.BatchID = batch.ID
			if _, err := stmt.ExecContext(ctx, o.BatchID, o.VariableName, o.VariablePath, o.Unit, o.Value); err != nil {
				return fmt.Errorf("failed to insert observation %s: %w", o.VariablePath, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// OwnedDevice returns a device only when it belongs to userID.
func (r *PostgresRepo) OwnedDevice(ctx context.Context, userID, deviceID int64) (*models.Device, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE id = $1 AND user_id = $2",
		deviceID, userID,
	)
	d, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("device %d: %w", deviceID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying device: %w", err)
	}
	return d, nil
}

// QueryObservations retrieves observations joined with their batch and
// device. Every non-zero field of filter adds an AND predicate.
func (r *PostgresRepo) QueryObservations(ctx context.Context, userID int64, filter models.ObservationFilter) ([]models.ObservationRecord, error) {
	conds := []string{"d.user_id = $1"}
	args := []any{userID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.DeviceEUI != "" {
		add("d.eui = $%d", filter.DeviceEUI)
	}
	if filter.VariablePath != "" {
		add("o.variable_path = $%d", filter.VariablePath)
	}
	if filter.VariableName != "" {
		add("o.variable_name = $%d", filter.VariableName)
	}
	if filter.Start != nil {
		add("b.observed_at >= $%d", *filter.Start)
	}
	if filter.End != nil {
		add("b.observed_at <= $%d", *filter.End)
	}
	args = append(args, filter.Limit)

	query := fmt.Sprintf(`
        SELECT d.eui, d.id, b.observed_at, b.origin, o.variable_name, o.variable_path, o.unit, o.value
        FROM observations o
        JOIN observation_batches b ON b.id = o.batch_id
        JOIN devices d ON d.id = b.device_id
        WHERE %s
        ORDER BY b.observed_at DESC, o.id ASC
        LIMIT $%d
    `, strings.Join(conds, " AND "), len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	defer rows.Close()

	results := []models.ObservationRecord{}
	for rows.Next() {
		var rec models.ObservationRecord
		var origin string
		var unit sql.NullString
		if err := rows.Scan(&rec.EUI, &rec.DeviceID, &rec.ObservedAt, &origin,
			&rec.VariableName, &rec.VariablePath, &unit, &rec.Value); err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		rec.Origin = models.Origin(origin)
		rec.Unit = stringPtr(unit)
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating observations: %w", err)
	}
	return results, nil
}

// QuerySeries retrieves the time series of one variable path on a device.
func (r *PostgresRepo) QuerySeries(ctx context.Context, deviceID int64, variablePath string, start, end *time.Time, limit int) ([]models.SeriesPoint, error) {
	query := `
        SELECT b.observed_at, o.value, o.unit
        FROM observations o
        JOIN observation_batches b ON b.id = o.batch_id
        WHERE b.device_id = $1 AND o.variable_path = $2`
	args := []any{deviceID, variablePath}

	if start != nil {
		args = append(args, *start)
		query += fmt.Sprintf(" AND b.observed_at >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += fmt.Sprintf(" AND b.observed_at <= $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY b.observed_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying series: %w", err)
	}
	defer rows.Close()

	points := []models.SeriesPoint{}
	for rows.Next() {
		var p models.SeriesPoint
		var unit sql.NullString
		if err := rows.Scan(&p.Time, &p.Value, &unit); err != nil {
			return nil, fmt.Errorf("scanning series point: %w", err)
		}
		p.Unit = stringPtr(unit)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating series: %w", err)
	}
	return points, nil
}
