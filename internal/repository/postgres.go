package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore implements the key-value store on top of the kv_store table.
type PostgresStore struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresStore creates a PostgresStore using the provided *sql.DB.
// db must be a valid connection to a PostgreSQL instance with the schema
// created by db.InitPostgres.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// Get fetches the value stored under key.
//
//	ctx: context for cancellation and deadlines
//	key: storage key
//
// The boolean result is false when no row exists for key.
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, `
		SELECT value FROM kv_store WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get failed: %w", err)
	}
	return value, true, nil
}

// Set inserts or replaces the value stored under key.
//
//	ctx:   context for cancellation and deadlines
//	key:   storage key
//	value: serialized value
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()
	`, key, value)
	if err != nil {
		return fmt.Errorf("kv set failed: %w", err)
	}
	return nil
}
