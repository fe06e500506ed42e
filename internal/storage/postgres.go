// ABOUTME: Postgres backend for the hosted table-store deployment.
// ABOUTME: Uses a pgx connection pool; the schema matches the SQLite one.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OpenPostgres connects to dsn, verifies the connection and ensures the schema.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("open postgres: empty DSN")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return newSQLStore(&pgxQuerier{pool: pool}, dialectPostgres), nil
}

type pgxQuerier struct {
	pool *pgxpool.Pool
}

func (q *pgxQuerier) exec(ctx context.Context, query string, args ...any) error {
	_, err := q.pool.Exec(ctx, query, args...)
	return err
}

func (q *pgxQuerier) query(ctx context.Context, query string, args ...any) (rows, error) {
	return q.pool.Query(ctx, query, args...)
}

func (q *pgxQuerier) queryRow(ctx context.Context, query string, args ...any) scanner {
	return pgxRow{q.pool.QueryRow(ctx, query, args...)}
}

func (q *pgxQuerier) classify(err error) ErrorKind {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return KindTransport
	}
	switch {
	case strings.HasPrefix(pgErr.Code, "23"):
		return KindConstraint
	case pgErr.Code == "42501", strings.HasPrefix(pgErr.Code, "28"):
		return KindUnauthorized
	default:
		return KindTransport
	}
}

func (q *pgxQuerier) close() error {
	q.pool.Close()
	return nil
}

type pgxRow struct {
	row pgx.Row
}

func (r pgxRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return errNoRows
	}
	return err
}
