// Package store demarcates business operations as single Postgres
// transactions and re-runs them when the database reports a write conflict.
package store

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queryer is the statement-execution subset shared by *pgxpool.Pool and
// pgx.Tx, so repositories run unchanged inside or outside a transaction.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	defaultMaxAttempts = 5
	defaultBackoff     = 25 * time.Millisecond
)

type Store struct {
	pool        *pgxpool.Pool
	maxAttempts int
	backoff     time.Duration
}

func New(pool *pgxpool.Pool, maxAttempts int, backoff time.Duration) *Store {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &Store{pool: pool, maxAttempts: maxAttempts, backoff: backoff}
}

func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Write runs fn in a serializable transaction and commits it. On a
// serialization failure or deadlock the whole transaction is rolled back and
// fn is re-run from scratch: everything it read before the conflict is stale.
// Attempts are capped so sustained contention surfaces as an error instead of
// livelock.
func (s *Store) Write(ctx context.Context, fn func(ctx context.Context, q Queryer) error) error {
	return s.run(ctx, fn, true)
}

// Read runs fn under the same conflict-retry umbrella but always rolls back,
// releasing any locks taken while reading a consistent snapshot.
func (s *Store) Read(ctx context.Context, fn func(ctx context.Context, q Queryer) error) error {
	return s.run(ctx, fn, false)
}

func (s *Store) run(ctx context.Context, fn func(ctx context.Context, q Queryer) error, commit bool) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err := s.attempt(ctx, fn, commit)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err
		if err := sleep(ctx, Backoff(attempt, s.backoff)); err != nil {
			return err
		}
	}
	return lastErr
}

func (s *Store) attempt(ctx context.Context, fn func(ctx context.Context, q Queryer) error, commit bool) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if !commit {
		return tx.Rollback(ctx)
	}
	return tx.Commit(ctx)
}

// IsRetryable reports whether err is a write conflict the database expects
// clients to resolve by retrying: serialization_failure (40001) or
// deadlock_detected (40P01).
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// Backoff returns a jittered linear delay for the given attempt so colliding
// sessions do not re-collide in lockstep.
func Backoff(attempt int, base time.Duration) time.Duration {
	d := time.Duration(attempt) * base
	return d + time.Duration(rand.Int63n(int64(base)))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
