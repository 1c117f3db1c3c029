package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"luckyDrawAPI/internal/prize"
)

const claimsSchema = `
CREATE TABLE IF NOT EXISTS lucky_claims (
    seq        BIGSERIAL,
    id         UUID NOT NULL,
    handle     TEXT PRIMARY KEY,
    amount     BIGINT NOT NULL,
    claimed_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore keeps claims in a table keyed by handle, so a claim is a single
// atomic insert-if-absent.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, claimsSchema); err != nil {
		return fmt.Errorf("failed to create lucky_claims: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Claim(ctx context.Context, entry prize.Entry) (Result, error) {
	insertQuery := `
		INSERT INTO lucky_claims (id, handle, amount, claimed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (handle) DO NOTHING
		RETURNING id, handle, amount, claimed_at
	`

	var stored prize.Entry
	err := s.db.QueryRow(ctx, insertQuery, entry.ID, entry.Handle, entry.Amount, entry.ClaimedAt).Scan(
		&stored.ID,
		&stored.Handle,
		&stored.Amount,
		&stored.ClaimedAt,
	)
	if err == nil {
		return Result{Entry: stored}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Result{}, fmt.Errorf("%w: insert claim: %w", ErrUpstream, err)
	}

	existingQuery := `SELECT id, handle, amount, claimed_at FROM lucky_claims WHERE handle = $1`
	err = s.db.QueryRow(ctx, existingQuery, entry.Handle).Scan(
		&stored.ID,
		&stored.Handle,
		&stored.Amount,
		&stored.ClaimedAt,
	)
	if err != nil {
		return Result{}, fmt.Errorf("%w: load existing claim: %w", ErrUpstream, err)
	}

	return Result{Entry: stored, Duplicate: true}, nil
}

func (s *PostgresStore) Entries(ctx context.Context) ([]prize.Entry, error) {
	query := `SELECT id, handle, amount, claimed_at FROM lucky_claims ORDER BY seq`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list claims: %w", ErrUpstream, err)
	}
	defer rows.Close()

	var entries []prize.Entry
	for rows.Next() {
		var e prize.Entry
		if err := rows.Scan(&e.ID, &e.Handle, &e.Amount, &e.ClaimedAt); err != nil {
			return nil, fmt.Errorf("%w: scan claim: %w", ErrUpstream, err)
		}
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list claims: %w", ErrUpstream, err)
	}

	return entries, nil
}
