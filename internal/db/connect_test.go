package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Database {
	t.Helper()
	database, err := NewDatabaseConnection(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn    string
		driver Driver
		target string
		ok     bool
	}{
		{"postgres://u:p@localhost/trains", DriverPostgres, "postgres://u:p@localhost/trains", true},
		{"postgresql://localhost/trains", DriverPostgres, "postgresql://localhost/trains", true},
		{"sqlite://trainbot.db", DriverSQLite, "trainbot.db", true},
		{"sqlite://:memory:", DriverSQLite, ":memory:", true},
		{"sqlite://", "", "", false},
		{"mysql://localhost/trains", "", "", false},
		{"trainbot.db", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			driver, target, err := parseDSN(tt.dsn)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.target, target)
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "postgres://trains:***@db:5432/trains", MaskDSN("postgres://trains:hunter2@db:5432/trains"))
	assert.Equal(t, "postgres://trains@db/trains", MaskDSN("postgres://trains@db/trains"))
	assert.Equal(t, "sqlite://trainbot.db", MaskDSN("sqlite://trainbot.db"))
}

func TestRebind(t *testing.T) {
	pg := &Database{driver: DriverPostgres}
	lite := &Database{driver: DriverSQLite}

	query := "SELECT * FROM trains_data WHERE starts LIKE ? AND ends LIKE ? LIMIT 10"
	assert.Equal(t, "SELECT * FROM trains_data WHERE starts LIKE $1 AND ends LIKE $2 LIMIT 10", pg.Rebind(query))
	assert.Equal(t, query, lite.Rebind(query))
	assert.Equal(t, "SELECT 1", pg.Rebind("SELECT 1"))
}

func TestBuildCopyQuery(t *testing.T) {
	got := buildCopyQuery("trains_staging", []string{"Train no.", "Train name", `odd"name`})
	assert.Equal(t, `COPY trains_staging ("Train no.", "Train name", "odd""name") FROM STDIN WITH (FORMAT csv, HEADER true)`, got)
}

func TestSQLiteMemory(t *testing.T) {
	database := openMemory(t)
	ctx := context.Background()

	assert.Equal(t, DriverSQLite, database.Driver())
	assert.Equal(t, "sqlite://:memory:", database.DSN())
	require.NoError(t, database.Ping(ctx))

	_, err := database.ExecContext(ctx, "CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)")
	require.NoError(t, err)
	_, err = database.ExecContext(ctx, "INSERT INTO kv (k, v) VALUES (?, ?)", "a", "1")
	require.NoError(t, err)

	var v string
	require.NoError(t, database.QueryRowContext(ctx, "SELECT v FROM kv WHERE k = ?", "a").Scan(&v))
	assert.Equal(t, "1", v)

	_, err = database.QueryContext(ctx, "SELECT * FROM missing")
	assert.True(t, IsUndefinedTable(err))
}

func TestSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trainbot.db")
	database, err := NewDatabaseConnection(context.Background(), "sqlite://"+path)
	require.NoError(t, err)
	defer database.Close()

	assert.FileExists(t, path)
}

func TestCopyUnsupportedOnSQLite(t *testing.T) {
	database := openMemory(t)
	_, err := database.CopyFromCSVFile(context.Background(), "t", []string{"a"}, "x.csv")
	assert.ErrorIs(t, err, ErrCopyUnsupported)
}

func TestErrorClassifiers(t *testing.T) {
	pgMissing := fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01", Message: `relation "trains_data" does not exist`})
	assert.True(t, IsUndefinedTable(pgMissing))
	assert.False(t, IsUndefinedTable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUndefinedTable(nil))

	assert.True(t, IsSQLiteBusy(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, IsSQLiteBusy(nil))
	assert.True(t, IsSQLiteLocked(errors.New("database table is locked (SQLITE_LOCKED)")))
	assert.False(t, IsSQLiteLocked(errors.New("boom")))
}

func TestCloseNil(t *testing.T) {
	var database *Database
	assert.NoError(t, database.Close())
}
