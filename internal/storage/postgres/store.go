// Package postgres implements the scan store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/piisweep/piisweep/internal/storage"
	"github.com/piisweep/piisweep/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS scan_runs (
	id            TEXT PRIMARY KEY,
	created_at    TIMESTAMPTZ NOT NULL,
	source_path   TEXT NOT NULL,
	total_files   INTEGER NOT NULL,
	total_pii     INTEGER NOT NULL,
	results_json  JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scan_runs_created_at ON scan_runs(created_at DESC);
`

// Store is a PostgreSQL-backed ScanStore.
type Store struct {
	db *sql.DB
}

var _ storage.ScanStore = (*Store)(nil)

// New connects with the given DSN and ensures the schema exists.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Println("postgres: store ready")
	return &Store{db: db}, nil
}

func (s *Store) SaveRun(ctx context.Context, run *storage.ScanRun) error {
	data, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scan_runs (id, created_at, source_path, total_files, total_pii, results_json)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.CreatedAt, run.SourcePath,
		run.Results.TotalFilesProcessed, run.Results.TotalPIIFound, string(data))
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*storage.ScanRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source_path, results_json FROM scan_runs WHERE id = $1`, id)
	return scanRun(row)
}

func (s *Store) LatestRun(ctx context.Context) (*storage.ScanRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source_path, results_json
		 FROM scan_runs ORDER BY created_at DESC, id DESC LIMIT 1`)
	return scanRun(row)
}

func (s *Store) ListRuns(ctx context.Context) ([]storage.RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source_path, total_files, total_pii
		 FROM scan_runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []storage.RunInfo
	for rows.Next() {
		var info storage.RunInfo
		if err := rows.Scan(&info.ID, &info.CreatedAt, &info.SourcePath,
			&info.TotalFilesProcessed, &info.TotalPIIFound); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func scanRun(row *sql.Row) (*storage.ScanRun, error) {
	var run storage.ScanRun
	var data []byte
	err := row.Scan(&run.ID, &run.CreatedAt, &run.SourcePath, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var results types.ScanResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to decode results for run %s: %w", run.ID, err)
	}
	run.Results = &results
	return &run, nil
}
