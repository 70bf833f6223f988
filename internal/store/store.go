// Package store reads and writes the DevTogether tables (profiles, projects,
// applications, messages, organization_feedback, profile_analytics) in Postgres.
//
// Every method is a single round trip; callers compose them without a transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a single-row read matches nothing.
	ErrNotFound = errors.New("STORE_NOT_FOUND")
	// ErrSchemaMissing wraps reads that reference a column, table or function that
	// has not been provisioned yet.
	ErrSchemaMissing = errors.New("STORE_SCHEMA_MISSING")
)

// Postgres error codes that indicate an unapplied migration.
var schemaMissingCodes = map[pq.ErrorCode]bool{
	"42703": true, // undefined_column
	"42P01": true, // undefined_table
	"42883": true, // undefined_function
}

// Store is the Postgres-backed query client.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// classify wraps err with ErrNotFound or ErrSchemaMissing where applicable.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && schemaMissingCodes[pqErr.Code] {
		return fmt.Errorf("%s: %w: %s", op, ErrSchemaMissing, pqErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsSchemaMissing reports whether err was caused by an unprovisioned column, table or function.
func IsSchemaMissing(err error) bool {
	return errors.Is(err, ErrSchemaMissing)
}

func (s *Store) queryRows(ctx context.Context, op, query string, scan func(rowScanner) error, args ...interface{}) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return classify(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return classify(op, err)
		}
	}
	return classify(op, rows.Err())
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
