package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of pgx satisfied by both pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &txRunner{pool: pool}
}

// WithReadTx runs fn inside a read-only transaction. Every request handler
// query path goes through here so a request can never hold more than one
// connection.
func (r *txRunner) WithReadTx(ctx context.Context, fn func(Provider) error) error {
	return r.withTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

func (r *txRunner) WithWriteTx(ctx context.Context, fn func(Provider) error) error {
	return r.withTx(ctx, pgx.TxOptions{}, fn)
}

func (r *txRunner) withTx(ctx context.Context, opts pgx.TxOptions, fn func(Provider) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// Rollback is a no-op once the transaction committed.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(newProvider(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

type provider struct {
	q querier
}

func newProvider(q querier) Provider {
	return &provider{q: q}
}

func (p *provider) Organizations() OrganizationStore {
	return newOrganizationStore(p.q)
}

func (p *provider) Buildings() BuildingStore {
	return newBuildingStore(p.q)
}

func (p *provider) Activities() ActivityStore {
	return newActivityStore(p.q)
}
