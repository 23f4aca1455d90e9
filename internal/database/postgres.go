//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/repository.go -package=mocks . IngestRepository,QueryRepository,AccountRepository

// Package database implements the PostgreSQL persistence layer.
//
// Schema:
//   - users, productive_units, devices: account and device registry
//   - observation_batches: one row per accepted uplink, raw JSON kept as JSONB
//   - observations: numeric values extracted from a batch
//
// Deleting a device cascades to its batches and their observations.
//
// Example usage:
//
//	repo, err := NewPostgresRepo(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
//	if err := repo.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/tejusbharadwaj/agrotelemetry/internal/config"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresRepo implements IngestRepository, QueryRepository and
// AccountRepository on top of database/sql and lib/pq.
type PostgresRepo struct {
	db *sql.DB
}

// ConnString builds a lib/pq key/value connection string from configuration.
func ConnString(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
		cfg.ConnectionTimeout,
	)
}

// NewPostgresRepo opens a connection pool and verifies connectivity.
func NewPostgresRepo(ctx context.Context, cfg config.DatabaseConfig) (*PostgresRepo, error) {
	db, err := sql.Open("postgres", ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
		db.SetMaxIdleConns(cfg.MaxConnections)
	}
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ConnectionTimeout+1)*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	return &PostgresRepo{db: db}, nil
}

// NewWithDB wraps an existing pool. Used by tests and callers that manage the
// *sql.DB themselves.
func NewWithDB(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// Ping reports whether the database answers.
func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close releases all database resources.
func (r *PostgresRepo) Close() error {
	return r.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// nullJSON maps an empty document to SQL NULL.
func nullJSON(raw []byte) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}

// Compile-time interface implementation checks
var (
	_ IngestRepository  = (*PostgresRepo)(nil)
	_ QueryRepository   = (*PostgresRepo)(nil)
	_ AccountRepository = (*PostgresRepo)(nil)
)
