// Package storage defines the scan-run persistence contract. Backends live
// in the sqlite and postgres subpackages; the resolution engine itself never
// touches storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/piisweep/piisweep/pkg/types"
)

// ErrNotFound is returned when a requested scan run does not exist.
var ErrNotFound = errors.New("scan run not found")

// ScanRun is one persisted scan: the corpus results plus metadata.
type ScanRun struct {
	ID         string             `json:"id"`
	CreatedAt  time.Time          `json:"created_at"`
	SourcePath string             `json:"source_path"`
	Results    *types.ScanResults `json:"results"`
}

// RunInfo is the listing view of a run, without the results payload.
type RunInfo struct {
	ID                  string    `json:"id"`
	CreatedAt           time.Time `json:"created_at"`
	SourcePath          string    `json:"source_path"`
	TotalFilesProcessed int       `json:"total_files_processed"`
	TotalPIIFound       int       `json:"total_pii_found"`
}

// ScanStore persists scan runs.
type ScanStore interface {
	// SaveRun stores a run. The run ID must be unique.
	SaveRun(ctx context.Context, run *ScanRun) error

	// GetRun loads a run by ID, or ErrNotFound.
	GetRun(ctx context.Context, id string) (*ScanRun, error)

	// LatestRun loads the most recently created run, or ErrNotFound when
	// the store is empty.
	LatestRun(ctx context.Context) (*ScanRun, error)

	// ListRuns returns run metadata, newest first.
	ListRuns(ctx context.Context) ([]RunInfo, error)

	// Close releases the underlying connections.
	Close() error
}
