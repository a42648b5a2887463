// Package storage persists run history with SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fraudscope/internal/common"
	"fraudscope/internal/model"
	"fraudscope/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveRun persists a completed run and its predictions atomically.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.Run, predictions []model.Prediction) (int64, error) {
	if run == nil {
		return 0, fmt.Errorf("run cannot be nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs (created_at, backend_url, input_rows, output_rows,
			total_providers, fraud_count, fraud_rate_pct, total_savings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt, run.BackendURL, run.InputRows, run.OutputRows,
		run.TotalProviders, run.FraudCount, run.FraudRatePct, run.TotalSavings)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_predictions (run_id, provider, prediction, probability)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare prediction insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range predictions {
		if _, err := stmt.ExecContext(ctx, runID, p.Provider, p.Prediccion, p.ProbabilidadFraude); err != nil {
			return 0, fmt.Errorf("failed to insert prediction for %s: %w", p.Provider, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// GetRun returns the run with the given id.
func (s *SQLiteStorage) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, backend_url, input_rows, output_rows,
			total_providers, fraud_count, fraud_rate_pct, total_savings
		FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// GetLatestRun returns the most recently saved run.
func (s *SQLiteStorage) GetLatestRun(ctx context.Context) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, backend_url, input_rows, output_rows,
			total_providers, fraud_count, fraud_rate_pct, total_savings
		FROM runs ORDER BY id DESC LIMIT 1`)
	return scanRun(row)
}

// ListRuns returns runs newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, filter service.RunFilter) ([]model.Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, backend_url, input_rows, output_rows,
			total_providers, fraud_count, fraud_rate_pct, total_savings
		FROM runs ORDER BY id DESC LIMIT ? OFFSET ?`, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.BackendURL,
			&run.InputRows, &run.OutputRows, &run.TotalProviders,
			&run.FraudCount, &run.FraudRatePct, &run.TotalSavings); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunPredictions returns the predictions stored for a run, fraud
// probability descending.
func (s *SQLiteStorage) GetRunPredictions(ctx context.Context, runID int64) ([]model.Prediction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT provider, prediction, probability
		FROM run_predictions WHERE run_id = ?
		ORDER BY probability DESC, provider ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var predictions []model.Prediction
	for rows.Next() {
		var p model.Prediction
		if err := rows.Scan(&p.Provider, &p.Prediccion, &p.ProbabilidadFraude); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

func scanRun(row *sql.Row) (*model.Run, error) {
	var run model.Run
	err := row.Scan(&run.ID, &run.CreatedAt, &run.BackendURL,
		&run.InputRows, &run.OutputRows, &run.TotalProviders,
		&run.FraudCount, &run.FraudRatePct, &run.TotalSavings)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &run, nil
}
