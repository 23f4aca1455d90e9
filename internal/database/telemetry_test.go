package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

func newMockRepo(t *testing.T) (*PostgresRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func strPtr(s string) *string { return &s }

var deviceCols = []string{"id", "user_id", "productive_unit_id", "brand", "device_identifier", "kind", "eui", "created_at"}

func TestDeviceByEUI(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM devices WHERE eui = $1")).
			WithArgs("70B3D57ED0000001").
			WillReturnRows(sqlmock.NewRows(deviceCols).
				AddRow(int64(7), int64(1), int64(3), "Dragino", nil, "soil", "70B3D57ED0000001", created))

		d, err := repo.DeviceByEUI(context.Background(), "70B3D57ED0000001")
		require.NoError(t, err)
		assert.Equal(t, int64(7), d.ID)
		assert.Equal(t, int64(3), d.ProductiveUnitID)
		assert.Equal(t, "Dragino", *d.Brand)
		assert.Nil(t, d.DeviceIdentifier)
		assert.Equal(t, "soil", *d.Kind)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM devices WHERE eui = $1")).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(deviceCols))

		_, err := repo.DeviceByEUI(context.Background(), "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestSaveBatch(t *testing.T) {
	observedAt := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	created := observedAt.Add(time.Second)
	insertBatch := regexp.QuoteMeta("INSERT INTO observation_batches")
	insertObs := regexp.QuoteMeta("INSERT INTO observations")

	newBatch := func() *models.ObservationBatch {
		return &models.ObservationBatch{
			DeviceID:    7,
			ObservedAt:  observedAt,
			Origin:      models.OriginDecoded,
			RawJSON:     []byte(`{"uplink_message":{}}`),
			DecodedJSON: []byte(`{"t":21.5}`),
		}
	}

	t.Run("commits batch and observations", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(insertBatch).
			WithArgs(int64(7), observedAt, "decoded", `{"uplink_message":{}}`, `{"t":21.5}`, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), created))
		prep := mock.ExpectPrepare(insertObs)
		prep.ExpectExec().WithArgs(int64(42), "t", "t", nil, 21.5).WillReturnResult(sqlmock.NewResult(1, 1))
		prep.ExpectExec().WithArgs(int64(42), "humidity", "air.humidity", "%", 61.0).WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		batch := newBatch()
		obs := []models.Observation{
			{VariableName: "t", VariablePath: "t", Value: 21.5},
			{VariableName: "humidity", VariablePath: "air.humidity", Unit: strPtr("%"), Value: 61},
		}
		require.NoError(t, repo.SaveBatch(context.Background(), batch, obs))
		assert.Equal(t, int64(42), batch.ID)
		assert.Equal(t, created, batch.CreatedAt)
		for _, o := range obs {
			assert.Equal(t, int64(42), o.BatchID)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no observations skips prepare", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(insertBatch).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(43), created))
		mock.ExpectCommit()

		require.NoError(t, repo.SaveBatch(context.Background(), newBatch(), nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("observation failure rolls back", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(insertBatch).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(44), created))
		mock.ExpectPrepare(insertObs).ExpectExec().WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.SaveBatch(context.Background(), newBatch(), []models.Observation{{VariableName: "t", VariablePath: "t", Value: 1}})
		assert.ErrorContains(t, err, "disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("batch insert failure rolls back", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(insertBatch).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := repo.SaveBatch(context.Background(), newBatch(), nil)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQueryObservations(t *testing.T) {
	observedAt := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	start := observedAt.Add(-time.Hour)
	cols := []string{"eui", "id", "observed_at", "origin", "variable_name", "variable_path", "unit", "value"}

	t.Run("all filters are ANDed", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE d.user_id = $1 AND d.eui = $2 AND o.variable_path = $3 AND o.variable_name = $4 AND b.observed_at >= $5")+
			".*"+regexp.QuoteMeta("LIMIT $6")).
			WithArgs(int64(1), "EUI1", "air.temperature", "temperature", start, 50).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("EUI1", int64(7), observedAt, "normalized", "temperature", "air.temperature", "°C", 21.5))

		recs, err := repo.QueryObservations(context.Background(), 1, models.ObservationFilter{
			DeviceEUI:    "EUI1",
			VariablePath: "air.temperature",
			VariableName: "temperature",
			Start:        &start,
			Limit:        50,
		})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, models.OriginNormalized, recs[0].Origin)
		assert.Equal(t, "°C", *recs[0].Unit)
		assert.Equal(t, 21.5, recs[0].Value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no filters returns empty slice", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE d.user_id = $1")+".*"+regexp.QuoteMeta("LIMIT $2")).
			WithArgs(int64(1), 200).
			WillReturnRows(sqlmock.NewRows(cols))

		recs, err := repo.QueryObservations(context.Background(), 1, models.ObservationFilter{Limit: 200})
		require.NoError(t, err)
		assert.NotNil(t, recs)
		assert.Empty(t, recs)
	})
}

func TestQuerySeries(t *testing.T) {
	end := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.device_id = $1 AND o.variable_path = $2 AND b.observed_at <= $3 ORDER BY b.observed_at DESC LIMIT $4")).
		WithArgs(int64(7), "soil.moisture", end, 100).
		WillReturnRows(sqlmock.NewRows([]string{"observed_at", "value", "unit"}).
			AddRow(end.Add(-time.Minute), 33.0, nil).
			AddRow(end.Add(-2*time.Minute), 32.5, "%"))

	points, err := repo.QuerySeries(context.Background(), 7, "soil.moisture", nil, &end, 100)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Nil(t, points[0].Unit)
	assert.Equal(t, "%", *points[1].Unit)
	assert.NoError(t, mock.ExpectationsWereMet())
}
