// ABOUTME: SQLite backend connection and lifecycle management.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
)

// sqliteConstraint is SQLITE_CONSTRAINT; extended codes share its low byte.
const sqliteConstraint = 19

// OpenSQLite opens or creates a SQLite record store at the given path.
func OpenSQLite(dbPath string) (*SQLStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := OpenSQLiteDB(dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return newSQLStore(&sqliteQuerier{db: db}, dialectSQLite), nil
}

// OpenSQLiteDB opens a raw SQLite handle with the pragmas every database in
// this module uses. The auth user database shares it.
func OpenSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Pragmas are per-connection
	db.SetMaxOpenConns(1)

	if err := configurePragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}

	// Set file permissions
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	return db, nil
}

// DataDir returns the default data directory following the XDG base directory layout.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "wellness")
}

// DBPath returns the record database path inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "wellness.db")
}

// configurePragmas sets up SQLite for optimal performance.
func configurePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

type sqliteQuerier struct {
	db *sql.DB
}

// sqliteArgs encodes values the driver would otherwise store inconsistently.
func sqliteArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case time.Time:
			out[i] = encodeTime(v)
		case *float64:
			if v == nil {
				out[i] = nil
			} else {
				out[i] = *v
			}
		default:
			out[i] = a
		}
	}
	return out
}

func (q *sqliteQuerier) exec(ctx context.Context, query string, args ...any) error {
	_, err := q.db.ExecContext(ctx, query, sqliteArgs(args)...)
	return err
}

func (q *sqliteQuerier) query(ctx context.Context, query string, args ...any) (rows, error) {
	rs, err := q.db.QueryContext(ctx, query, sqliteArgs(args)...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rs}, nil
}

func (q *sqliteQuerier) queryRow(ctx context.Context, query string, args ...any) scanner {
	return sqlRow{q.db.QueryRowContext(ctx, query, sqliteArgs(args)...)}
}

func (q *sqliteQuerier) classify(err error) ErrorKind {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqliteConstraint {
		return KindConstraint
	}
	return KindTransport
}

func (q *sqliteQuerier) close() error {
	return q.db.Close()
}

type sqlRows struct {
	rs *sql.Rows
}

func (r sqlRows) Next() bool             { return r.rs.Next() }
func (r sqlRows) Scan(dest ...any) error { return r.rs.Scan(dest...) }
func (r sqlRows) Err() error             { return r.rs.Err() }
func (r sqlRows) Close()                 { _ = r.rs.Close() }

type sqlRow struct {
	row *sql.Row
}

func (r sqlRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return errNoRows
	}
	return err
}
