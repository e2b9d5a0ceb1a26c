package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repos bundles the repositories bound to one database transaction.
type Repos struct {
	Trips    TripRepo
	Vehicles VehicleRepo
}

// Atomic runs a unit of work with trip and vehicle repos bound to a single
// serializable transaction. The trip services use it to make the
// "check overlap → write" sequence atomic: without it, two concurrent requests
// for the same (user, vehicle) could both pass the overlap check before either
// commits.
type Atomic interface {
	// Serializable runs fn inside one SERIALIZABLE transaction, committing on
	// nil return and rolling back otherwise. Serialization failures are
	// retried a bounded number of times with a fresh transaction.
	Serializable(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// pgAtomic is the pgxpool-backed Atomic implementation.
type pgAtomic struct {
	pool *pgxpool.Pool
}

// NewAtomic constructs an Atomic runner over the given pool.
func NewAtomic(pool *pgxpool.Pool) Atomic {
	return &pgAtomic{pool: pool}
}

// serializationFailure is the Postgres SQLSTATE raised when a serializable
// transaction cannot be linearized and must be retried by the client.
const serializationFailure = "40001"

const maxTxAttempts = 3

func (a *pgAtomic) Serializable(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = a.runOnce(ctx, fn)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
	}
	return fmt.Errorf("repo.Atomic.Serializable: %d attempts: %w", maxTxAttempts, err)
}

func (a *pgAtomic) runOnce(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	tx, err := a.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("repo.Atomic.Serializable: begin: %w", err)
	}
	// Rollback after a successful commit is a harmless no-op.
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(ctx, Repos{
		Trips:    NewTripRepo(tx),
		Vehicles: NewVehicleRepo(tx),
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Atomic.Serializable: commit: %w", err)
	}
	return nil
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == serializationFailure
}
