// Package keystore persists encrypted named secrets in PostgreSQL.
// Values are sealed with the arc4 cipher before they reach the database;
// the store itself only ever sees ciphertext.
package keystore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// MaxNameLen bounds secret names.
	MaxNameLen = 256
	// MaxValueLen bounds plaintext secret values.
	MaxValueLen = 8192
)

var (
	// ErrInvalidName is returned for empty, oversized, or
	// non [A-Za-z0-9_-] names.
	ErrInvalidName = errors.New("keystore: name must be 1-256 chars of [A-Za-z0-9_-]")
	// ErrValueTooLarge is returned when a plaintext value exceeds MaxValueLen.
	ErrValueTooLarge = errors.New("keystore: value exceeds 8192 bytes")
)

// Entry is one stored secret. Value holds ciphertext; IV is the 4-byte
// initialization vector it was sealed with, and KeyFingerprint identifies
// the sealing key so a wrong-key Open fails loudly.
type Entry struct {
	Name           string
	Value          []byte
	IV             []byte
	KeyFingerprint string
	UpdatedAt      time.Time
}

// Store wraps a pgx connection pool for secret operations.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a Store handle.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool (used by tests).
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close closes the database connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// ValidateName reports whether name is a legal secret name: 1..256 bytes,
// each of them a letter, digit, underscore, or hyphen.
func ValidateName(name string) error {
	if len(name) == 0 || len(name) > MaxNameLen {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidName, len(name))
	}
	for i := range len(name) {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return fmt.Errorf("%w: byte 0x%02X at position %d", ErrInvalidName, c, i)
		}
	}
	return nil
}

// Put inserts or replaces the entry under its name.
func (s *Store) Put(ctx context.Context, e Entry) error {
	if err := ValidateName(e.Name); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO secrets (name, value, iv, key_fingerprint, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (name) DO UPDATE
		 SET value = EXCLUDED.value,
		     iv = EXCLUDED.iv,
		     key_fingerprint = EXCLUDED.key_fingerprint,
		     updated_at = EXCLUDED.updated_at`,
		e.Name, e.Value, e.IV, e.KeyFingerprint, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("storing secret %q: %w", e.Name, err)
	}
	return nil
}

// Get retrieves an entry by name. Returns nil, nil if it does not exist.
func (s *Store) Get(ctx context.Context, name string) (*Entry, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var e Entry
	err := s.pool.QueryRow(ctx,
		`SELECT name, value, iv, key_fingerprint, updated_at
		 FROM secrets WHERE name = $1`, name,
	).Scan(&e.Name, &e.Value, &e.IV, &e.KeyFingerprint, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying secret %q: %w", name, err)
	}
	return &e, nil
}

// Delete removes the entry by name. Reports whether a row was deleted.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM secrets WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("deleting secret %q: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns all entries ordered by name, without ciphertext values.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, key_fingerprint, updated_at FROM secrets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing secrets: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.KeyFingerprint, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning secret row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating secret rows: %w", err)
	}
	return entries, nil
}
