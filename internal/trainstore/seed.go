package trainstore

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tarediiran-industries.com/trainbot/internal/common"
	"tarediiran-industries.com/trainbot/internal/db"
)

const stagingTable = "trains_staging"

const insertTrain = "INSERT INTO " + TableName + " (train_no, train_name, starts, ends) VALUES (?, ?, ?, ?) ON CONFLICT (train_no) DO NOTHING"

type SeedResult struct {
	// Rows is the number of data rows in the CSV.
	Rows int64
	// Inserted counts rows that were new; existing train numbers are kept.
	Inserted int64
}

// SeedFromCSV loads the train export at filePath into trains_data. The
// table is created first if missing.
func (store *Store) SeedFromCSV(ctx context.Context, filePath string) (SeedResult, error) {
	store.seedMu.Lock()
	defer store.seedMu.Unlock()

	bench := common.NewBenchmarker(store.logger, "seed "+filePath)
	defer bench.Close()

	if err := store.InitSchema(ctx); err != nil {
		return SeedResult{}, fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	var (
		result SeedResult
		err    error
	)
	if store.database.Driver() == db.DriverPostgres {
		result, err = store.seedByCopy(ctx, filePath)
	} else {
		result, err = store.seedByInsert(ctx, filePath)
	}
	if err != nil {
		return SeedResult{}, err
	}

	store.logger.Info("seeded trains",
		zap.String("csv", filePath),
		zap.Int64("rows", result.Rows),
		zap.Int64("inserted", result.Inserted),
	)
	return result, nil
}

func (store *Store) seedByInsert(ctx context.Context, filePath string) (SeedResult, error) {
	trains, err := ReadTrainsCSV(filePath)
	if err != nil {
		return SeedResult{}, err
	}

	tx, err := store.database.BeginTx(ctx)
	if err != nil {
		return SeedResult{}, fmt.Errorf("%w: begin: %w", ErrDatabase, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, store.database.Rebind(insertTrain))
	if err != nil {
		return SeedResult{}, fmt.Errorf("%w: prepare: %w", ErrDatabase, err)
	}
	defer stmt.Close()

	result := SeedResult{Rows: int64(len(trains))}
	for _, train := range trains {
		res, err := stmt.ExecContext(ctx, train.TrainNo, train.TrainName, train.Starts, train.Ends)
		if err != nil {
			return SeedResult{}, fmt.Errorf("%w: insert train %q: %w", ErrDatabase, train.TrainNo, err)
		}
		affected, err := res.RowsAffected()
		if err == nil {
			result.Inserted += affected
		}
	}

	if err := tx.Commit(); err != nil {
		return SeedResult{}, fmt.Errorf("%w: commit: %w", ErrDatabase, err)
	}
	return result, nil
}

// seedByCopy streams the whole CSV into an unlogged staging table with COPY,
// then moves the four train columns across in one statement.
func (store *Store) seedByCopy(ctx context.Context, filePath string) (SeedResult, error) {
	headers, err := ReadCSVForColumnNames(filePath)
	if err != nil {
		return SeedResult{}, err
	}
	if _, err := columnIndex(headers); err != nil {
		return SeedResult{}, err
	}

	columns := stagingColumns(headers)
	definitions := make([]string, len(columns))
	for i, column := range columns {
		definitions[i] = db.QuoteIdentifier(column) + " TEXT"
	}

	if _, err := store.database.ExecContext(ctx, "DROP TABLE IF EXISTS "+stagingTable); err != nil {
		return SeedResult{}, fmt.Errorf("%w: drop staging: %w", ErrDatabase, err)
	}
	create := fmt.Sprintf("CREATE UNLOGGED TABLE %s (%s)", stagingTable, strings.Join(definitions, ", "))
	if _, err := store.database.ExecContext(ctx, create); err != nil {
		return SeedResult{}, fmt.Errorf("%w: create staging: %w", ErrDatabase, err)
	}
	defer func() {
		if _, err := store.database.ExecContext(context.WithoutCancel(ctx), "DROP TABLE IF EXISTS "+stagingTable); err != nil {
			store.logger.Warn("failed to drop staging table", zap.Error(err))
		}
	}()

	rows, err := store.database.CopyFrom(ctx, stagingTable, columns, filePath)
	if err != nil {
		return SeedResult{}, fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	move := fmt.Sprintf(
		"INSERT INTO %s (train_no, train_name, starts, ends) SELECT %s, %s, %s, %s FROM %s ON CONFLICT (train_no) DO NOTHING",
		TableName,
		db.QuoteIdentifier(ColumnTrainNo),
		db.QuoteIdentifier(ColumnTrainName),
		db.QuoteIdentifier(ColumnStarts),
		db.QuoteIdentifier(ColumnEnds),
		stagingTable,
	)
	res, err := store.database.ExecContext(ctx, move)
	if err != nil {
		return SeedResult{}, fmt.Errorf("%w: insert from staging: %w", ErrDatabase, err)
	}

	result := SeedResult{Rows: rows}
	if affected, err := res.RowsAffected(); err == nil {
		result.Inserted = affected
	}
	return result, nil
}
