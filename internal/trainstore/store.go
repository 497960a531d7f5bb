// Package trainstore owns the trains_data table: schema, listing, route and
// keyword search, and seeding from the train CSV export.
package trainstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tarediiran-industries.com/trainbot/internal/common"
	"tarediiran-industries.com/trainbot/internal/db"
)

const (
	TableName   = "trains_data"
	SearchLimit = 10
)

var (
	ErrDatabase      = errors.New("database error")
	ErrTableNotFound = errors.New("trains table not found")
)

type Train struct {
	ID        int64
	TrainNo   string
	TrainName string
	Starts    string
	Ends      string
}

// Database is the subset of *db.Database the store needs.
type Database interface {
	db.DBTX
	db.CopyCapable
	Driver() db.Driver
	Ping(ctx context.Context) error
	DSN() string
	BeginTx(ctx context.Context) (*sql.Tx, error)
	Rebind(query string) string
}

type Store struct {
	database Database
	logger   *zap.Logger

	// Serializes seeds; the postgres path shares one staging table.
	seedMu sync.Mutex
}

func New(database Database, logger *zap.Logger) *Store {
	return &Store{database: database, logger: common.OrNop(logger)}
}

func (store *Store) schema() string {
	id := "id SERIAL PRIMARY KEY"
	if store.database.Driver() == db.DriverSQLite {
		id = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s,
	train_no TEXT UNIQUE,
	train_name TEXT,
	starts TEXT,
	ends TEXT
)`, TableName, id)
}

// InitSchema creates trains_data if it does not exist.
func (store *Store) InitSchema(ctx context.Context) error {
	if _, err := store.database.ExecContext(ctx, store.schema()); err != nil {
		return fmt.Errorf("create %s: %w", TableName, err)
	}
	return nil
}

func (store *Store) Ping(ctx context.Context) error {
	return store.database.Ping(ctx)
}

// DSN is the masked connection string.
func (store *Store) DSN() string {
	return store.database.DSN()
}

const selectTrains = "SELECT id, COALESCE(train_no, ''), COALESCE(train_name, ''), COALESCE(starts, ''), COALESCE(ends, '') FROM " + TableName

func (store *Store) ListTrains(ctx context.Context) ([]Train, error) {
	return store.query(ctx, selectTrains+" ORDER BY id")
}

// SearchRoute matches trains whose start and/or end station contains the
// given fragment, case-insensitively. An empty fragment is not constrained.
func (store *Store) SearchRoute(ctx context.Context, from, to string) ([]Train, error) {
	var (
		clauses []string
		args    []any
	)
	if from != "" {
		clauses = append(clauses, "LOWER(starts) LIKE ?")
		args = append(args, likePattern(from))
	}
	if to != "" {
		clauses = append(clauses, "LOWER(ends) LIKE ?")
		args = append(args, likePattern(to))
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY id LIMIT %d", selectTrains, strings.Join(clauses, " AND "), SearchLimit)
	return store.query(ctx, query, args...)
}

// SearchWords matches trains where any word appears in the name, stations or
// number.
func (store *Store) SearchWords(ctx context.Context, words []string) ([]Train, error) {
	if len(words) == 0 {
		return nil, nil
	}

	clauses := make([]string, 0, len(words)*4)
	args := make([]any, 0, len(words)*4)
	for _, word := range words {
		pattern := likePattern(word)
		for _, column := range []string{"train_name", "starts", "ends", "train_no"} {
			clauses = append(clauses, "LOWER("+column+") LIKE ?")
			args = append(args, pattern)
		}
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY id LIMIT %d", selectTrains, strings.Join(clauses, " OR "), SearchLimit)
	return store.query(ctx, query, args...)
}

func (store *Store) query(ctx context.Context, query string, args ...any) ([]Train, error) {
	rows, err := store.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	trains := []Train{}
	for rows.Next() {
		var train Train
		if err := rows.Scan(&train.ID, &train.TrainNo, &train.TrainName, &train.Starts, &train.Ends); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
		}
		trains = append(trains, train)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return trains, nil
}

func classify(err error) error {
	if db.IsUndefinedTable(err) {
		return fmt.Errorf("%w: %w", ErrTableNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrDatabase, err)
}

func likePattern(fragment string) string {
	return "%" + strings.ToLower(fragment) + "%"
}
