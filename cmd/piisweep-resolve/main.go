package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/piisweep/piisweep/internal/config"
	"github.com/piisweep/piisweep/internal/resolve"
	"github.com/piisweep/piisweep/internal/storage"
	"github.com/piisweep/piisweep/internal/storage/postgres"
	"github.com/piisweep/piisweep/internal/storage/sqlite"
	"github.com/piisweep/piisweep/pkg/types"
)

func main() {
	in := flag.String("in", "", "Scan results JSON file (default: load from the store)")
	runID := flag.String("run", "", "Stored run ID to resolve (default: latest run)")
	out := flag.String("out", "", "Write the resolution JSON to this file (default: stdout)")
	ambiguousOnly := flag.Bool("ambiguous-only", false, "Drop high-confidence candidates at ingestion")
	minConfidence := flag.String("min-confidence", "", "Drop candidates below this confidence (low, medium, high)")
	normalize := flag.Bool("normalize", false, "Trim and lowercase values before grouping")
	includeHigh := flag.Bool("include-high", true, "Emit mismatch conflicts even when all occurrences are high confidence")
	flag.Parse()

	if *in != "" && *runID != "" {
		log.Fatal("Use either -in or -run, not both")
	}

	ctx := context.Background()

	results, err := loadResults(ctx, *in, *runID)
	if err != nil {
		log.Fatalf("Failed to load scan results: %v", err)
	}

	opts := resolve.Options{
		AmbiguousOnly:                    *ambiguousOnly,
		MinConfidence:                    types.Confidence(*minConfidence),
		IncludeHighConfidenceInConflicts: *includeHigh,
		NormalizeValues:                  *normalize,
	}

	engine := resolve.NewEngine()
	if err := engine.LoadScanResults(results, opts); err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}
	resolution, err := engine.Resolve()
	if err != nil {
		log.Fatalf("Resolution failed: %v", err)
	}

	log.Printf("Resolved %d occurrences into %d value groups, %d type groups, %d conflicts",
		resolution.Summary.TotalOccurrences, resolution.Summary.TotalValueGroups,
		resolution.Summary.TotalTypeGroups, resolution.Summary.TotalConflicts)

	data, err := json.MarshalIndent(resolution, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode resolution: %v", err)
	}
	if *out == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("Failed to write resolution: %v", err)
	}
}

func loadResults(ctx context.Context, in, runID string) (*types.ScanResults, error) {
	if in != "" {
		data, err := os.ReadFile(in)
		if err != nil {
			return nil, err
		}
		var results types.ScanResults
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", in, err)
		}
		return &results, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	var run *storage.ScanRun
	if runID != "" {
		run, err = store.GetRun(ctx, runID)
	} else {
		run, err = store.LatestRun(ctx)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded run %s (%s)", run.ID, run.SourcePath)
	return run.Results, nil
}

func openStore(cfg *config.Config) (storage.ScanStore, error) {
	switch cfg.Storage.StorageEngine {
	case "postgres":
		return postgres.New(cfg.Storage.PostgresDSN)
	default:
		return sqlite.New(cfg.Storage.DataPath)
	}
}
