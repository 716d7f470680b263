package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Gateway is the single owner of the physical connection and transaction
// boundary. Every statement runs on a connection acquired from the pool for
// that statement only, inside its own transaction: commit on success,
// rollback on any failure. When the acquired connection turns out to be
// already closed, the statement is retried on a fresh connection exactly
// once; a second failure propagates.
type Gateway struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewGateway(ctx context.Context, databaseURL string, maxConns, minConns int32, log zerolog.Logger) (*Gateway, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Gateway{pool: pool, log: log}, nil
}

// NewGatewayFromPool wraps an existing pool. Used by tests and by the
// migration runner, which manages its own pool lifecycle.
func NewGatewayFromPool(pool *pgxpool.Pool, log zerolog.Logger) *Gateway {
	return &Gateway{pool: pool, log: log}
}

func (g *Gateway) Close() {
	g.pool.Close()
}

func (g *Gateway) Ping(ctx context.Context) error {
	return g.pool.Ping(ctx)
}

// Exec runs a single write statement in its own transaction.
func (g *Gateway) Exec(ctx context.Context, sql string, args ...any) error {
	return g.withRetry(ctx, sql, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sql, args...)
		return err
	})
}

// Query runs a single read statement in its own transaction and hands the
// result rows to scan. The rows are closed before Query returns.
func (g *Gateway) Query(ctx context.Context, sql string, scan func(pgx.Rows) error, args ...any) error {
	return g.withRetry(ctx, sql, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		if err := scan(rows); err != nil {
			return err
		}
		return rows.Err()
	})
}

func (g *Gateway) withRetry(ctx context.Context, sql string, fn func(pgx.Tx) error) error {
	err := g.inTx(ctx, fn)
	if err == nil || !retriable(err) {
		return err
	}

	// The connection was found already dead before the statement went out.
	// The pool replaces dead connections on the next acquire, so one retry
	// gets a live one. Nothing reached the server on the first attempt, so
	// re-executing cannot duplicate a write or a scan.
	g.log.Warn().Err(err).Str("sql", firstLine(sql)).Msg("stale connection, retrying statement once")
	return g.inTx(ctx, fn)
}

func (g *Gateway) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	conn, err := g.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// retriable reports whether err is guaranteed to have occurred before the
// statement was sent to the server, i.e. a connection found already closed
// on use. A drop mid-statement is NOT retriable: the server may already have
// applied the write (a re-insert into the tables without a primary key would
// duplicate rows) or delivered part of the result set (a re-scan would
// append rows twice), so those errors propagate.
func retriable(err error) bool {
	return err != nil && pgconn.SafeToRetry(err)
}

func firstLine(sql string) string {
	sql = strings.TrimSpace(sql)
	if i := strings.IndexByte(sql, '\n'); i >= 0 {
		sql = sql[:i]
	}
	return sql
}
