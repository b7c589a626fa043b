package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/multierr"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Dialect selects the SQL driver and placeholder style.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) driverName() (string, error) {
	switch d {
	case DialectSQLite:
		return "sqlite", nil
	case DialectPostgres:
		return "pgx", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", string(d))
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the repository methods. It runs either directly against the
// pool or inside a transaction handed out by WithExclusiveTransaction.
type Queries struct {
	q       querier
	dialect Dialect
}

// DB wraps a *sql.DB and provides repository methods.
type DB struct {
	*Queries
	sql    *sql.DB
	gate   *WriteGate
	logger *slog.Logger
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, dialect Dialect, dsn string, logger *slog.Logger) (*DB, error) {
	driver, err := dialect.driverName()
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{
		Queries: &Queries{q: sqlDB, dialect: dialect},
		sql:     sqlDB,
		gate:    NewWriteGate(),
		logger:  logger,
	}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.sql.Close()
}

// WithExclusiveTransaction runs fn in a single transaction while holding the
// write gate. The transaction commits when fn returns nil and rolls back otherwise.
func (db *DB) WithExclusiveTransaction(ctx context.Context, fn func(q *Queries) error) error {
	return db.gate.Do(ctx, func() error {
		tx, err := db.sql.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		if err := fn(&Queries{q: tx, dialect: db.dialect}); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				db.logger.Error("transaction rollback failed", "error", rbErr)
				return multierr.Append(err, fmt.Errorf("rolling back: %w", rbErr))
			}
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing transaction: %w", err)
		}
		return nil
	})
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.q.ExecContext(ctx, q.rebind(query), args...)
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.q.QueryContext(ctx, q.rebind(query), args...)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.q.QueryRowContext(ctx, q.rebind(query), args...)
}

// rebind turns ? placeholders into $n for postgres.
func (q *Queries) rebind(query string) string {
	if q.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func now() time.Time {
	return time.Now().UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("querying %s: %w", what, err)
}
