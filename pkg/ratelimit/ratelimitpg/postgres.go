package ratelimitpg

import (
	"context"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/Abraxas-365/leadgate/pkg/kernel"
	"github.com/Abraxas-365/leadgate/pkg/ratelimit"
	"github.com/jmoiron/sqlx"
)

// Schema creates the table used by Store.
const Schema = `
CREATE TABLE IF NOT EXISTS otp_rate_limits (
	key         TEXT PRIMARY KEY,
	count       INTEGER NOT NULL,
	reset_at_ms BIGINT  NOT NULL
)`

// Store implements ratelimit.Store with one row per key, serialized by a
// row lock. Keys are digested before storage.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type rateLimitRow struct {
	Key       string `db:"key"`
	Count     int    `db:"count"`
	ResetAtMS int64  `db:"reset_at_ms"`
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return errx.Wrap(err, "failed to create otp_rate_limits", errx.TypeInternal)
	}
	return nil
}

func (s *Store) Consume(ctx context.Context, key string, now time.Time, p ratelimit.Policy) (ratelimit.Decision, error) {
	digest := kernel.Digest(key)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return ratelimit.Decision{}, errx.Wrap(err, "failed to begin rate limit transaction", errx.TypeInternal)
	}
	defer tx.Rollback()

	// A zero row has an epoch reset, which Decide treats as elapsed.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO otp_rate_limits (key, count, reset_at_ms)
		VALUES ($1, 0, 0)
		ON CONFLICT (key) DO NOTHING`, digest); err != nil {
		return ratelimit.Decision{}, errx.Wrap(err, "failed to seed rate limit row", errx.TypeInternal)
	}

	var row rateLimitRow
	if err := tx.GetContext(ctx, &row, `
		SELECT key, count, reset_at_ms
		FROM otp_rate_limits
		WHERE key = $1
		FOR UPDATE`, digest); err != nil {
		return ratelimit.Decision{}, errx.Wrap(err, "failed to lock rate limit row", errx.TypeInternal)
	}

	prev := &ratelimit.Record{Count: row.Count, ResetAt: time.UnixMilli(row.ResetAtMS)}
	next, decision := ratelimit.Decide(prev, now, p)

	if next.Count != prev.Count || !next.ResetAt.Equal(prev.ResetAt) {
		if _, err := tx.ExecContext(ctx, `
			UPDATE otp_rate_limits SET count = $2, reset_at_ms = $3
			WHERE key = $1`, digest, next.Count, next.ResetAt.UnixMilli()); err != nil {
			return ratelimit.Decision{}, errx.Wrap(err, "failed to update rate limit row", errx.TypeInternal)
		}
	}

	if err := tx.Commit(); err != nil {
		return ratelimit.Decision{}, errx.Wrap(err, "failed to commit rate limit transaction", errx.TypeInternal)
	}
	return decision, nil
}

// Purge deletes rows whose window ended before now.
func (s *Store) Purge(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM otp_rate_limits WHERE reset_at_ms < $1`, now.UnixMilli())
	if err != nil {
		return 0, errx.Wrap(err, "failed to purge rate limits", errx.TypeInternal)
	}
	return res.RowsAffected()
}
