package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

var ErrCopyUnsupported = errors.New("db: COPY is only supported on postgres")

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type CopyCapable interface {
	CopyFrom(ctx context.Context, table string, columns []string, filePath string) (int64, error)
}

// Database wraps a database/sql handle. On postgres it also holds a pgx pool
// for COPY.
type Database struct {
	db     *sql.DB
	pool   *pgxpool.Pool
	driver Driver
	dsn    string
}

// NewDatabaseConnection opens the database named by dsn. postgres:// and
// postgresql:// URLs use pgx; sqlite:// URLs use modernc.org/sqlite, with
// sqlite://:memory: for a private in-memory database.
func NewDatabaseConnection(ctx context.Context, dsn string) (*Database, error) {
	driver, target, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	switch driver {
	case DriverPostgres:
		return openPostgres(ctx, dsn)
	default:
		return openSQLite(ctx, dsn, target)
	}
}

func parseDSN(dsn string) (Driver, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		target := strings.TrimPrefix(dsn, "sqlite://")
		if target == "" {
			return "", "", fmt.Errorf("db: sqlite DSN %q has no path", dsn)
		}
		return DriverSQLite, target, nil
	}
	return "", "", fmt.Errorf("db: unsupported DSN scheme in %q (want postgres:// or sqlite://)", MaskDSN(dsn))
}

func openPostgres(ctx context.Context, dsn string) (*Database, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		_ = db.Close()
		return nil, fmt.Errorf("pgxpool ping: %w", err)
	}

	return &Database{db: db, pool: pool, driver: DriverPostgres, dsn: dsn}, nil
}

func openSQLite(ctx context.Context, dsn, target string) (*Database, error) {
	source := target
	if target != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		source = target + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", source)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	// An in-memory database lives and dies with its only connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return &Database{db: db, driver: DriverSQLite, dsn: dsn}, nil
}

func (db *Database) Driver() Driver {
	return db.driver
}

// DSN returns the connection string with any password masked.
func (db *Database) DSN() string {
	return MaskDSN(db.dsn)
}

func (db *Database) Close() error {
	if db == nil || db.db == nil {
		return nil
	}
	if db.pool != nil {
		db.pool.Close()
	}
	return db.db.Close()
}

func (db *Database) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *Database) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

func (db *Database) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, db.Rebind(query), args...)
}

func (db *Database) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, db.Rebind(query), args...)
}

func (db *Database) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, db.Rebind(query), args...)
}

// Rebind rewrites ? placeholders to $n on postgres. Queries must not carry
// a literal ? inside string constants.
func (db *Database) Rebind(query string) string {
	if db.driver != DriverPostgres || !strings.Contains(query, "?") {
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

// MaskDSN replaces the password of a URL-style DSN with ***.
func MaskDSN(dsn string) string {
	parsed, err := url.Parse(dsn)
	if err != nil || parsed.User == nil {
		return dsn
	}
	if _, ok := parsed.User.Password(); !ok {
		return dsn
	}
	parsed.User = url.UserPassword(parsed.User.Username(), "***")
	return strings.Replace(parsed.String(), "%2A%2A%2A", "***", 1)
}

func QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func buildCopyQuery(tableName string, columns []string) string {
	protectedColumns := make([]string, len(columns))
	for i, col := range columns {
		protectedColumns[i] = QuoteIdentifier(col)
	}

	return fmt.Sprintf(
		"COPY %s (%s) FROM STDIN WITH (FORMAT csv, HEADER true)",
		tableName,
		strings.Join(protectedColumns, ", "),
	)
}

// CopyFromCSVFile streams a CSV file with a header row into table.
func (db *Database) CopyFromCSVFile(ctx context.Context, table string, columns []string, filePath string) (int64, error) {
	if db.pool == nil {
		return 0, ErrCopyUnsupported
	}

	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire connection from pool: %w", err)
	}
	defer conn.Release()

	copyQuery := buildCopyQuery(table, columns)
	res, err := conn.Conn().PgConn().CopyFrom(ctx, file, copyQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to copy from CSV file: %w", err)
	}
	return res.RowsAffected(), nil
}

func (db *Database) CopyFrom(ctx context.Context, table string, columns []string, filePath string) (int64, error) {
	return db.CopyFromCSVFile(ctx, table, columns, filePath)
}
