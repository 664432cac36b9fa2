package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/piisweep/piisweep/internal/config"
	"github.com/piisweep/piisweep/internal/llm"
	"github.com/piisweep/piisweep/internal/scanner"
	"github.com/piisweep/piisweep/internal/storage"
	"github.com/piisweep/piisweep/internal/storage/postgres"
	"github.com/piisweep/piisweep/internal/storage/sqlite"
	"github.com/piisweep/piisweep/pkg/types"
)

func main() {
	path := flag.String("path", "", "File or directory to scan (required)")
	profilePath := flag.String("profile", "", "Path to a YAML scan profile")
	out := flag.String("out", "", "Write scan results JSON to this file (default: stdout)")
	save := flag.Bool("save", true, "Persist the scan run to the store")
	watch := flag.Bool("watch", false, "After scanning, keep scanning files created under the directory")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, err := llm.NewTextGenerator(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create oracle client: %v", err)
	}
	extractor := llm.NewExtractor(client, cfg.Scan.RequestsPerSecond)
	log.Printf("Scanning with model %s", extractor.Model())

	chunker := scanner.Chunker{
		ChunkSize:         cfg.Scan.ChunkSize,
		OverlapPercentage: cfg.Scan.OverlapPercentage,
	}
	s := scanner.New(extractor, chunker, cfg.Scan.Workers)
	s.SetProgressCallback(func(ev scanner.ProgressEvent) {
		if ev.Type == "file_completed" {
			log.Printf("Scanned %s: %d candidates", ev.File, ev.CandidateCount)
		}
	})

	var profile *scanner.Profile
	if *profilePath != "" {
		profile, err = scanner.LoadProfile(*profilePath)
		if err != nil {
			log.Fatalf("Failed to load scan profile: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	results, err := scan(ctx, s, *path, profile)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}
	log.Printf("Scan complete: %d files, %d candidates",
		results.TotalFilesProcessed, results.TotalPIIFound)

	if err := writeResults(results, *out); err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}

	var store storage.ScanStore
	if *save {
		store, err = openStore(cfg)
		if err != nil {
			log.Fatalf("Failed to open store: %v", err)
		}
		defer store.Close()

		if err := saveRun(ctx, store, *path, results); err != nil {
			log.Fatalf("Failed to save run: %v", err)
		}
	}

	if *watch {
		if err := watchLoop(ctx, s, *path, profile, store, results, *out); err != nil {
			log.Fatalf("Watch failed: %v", err)
		}
	}
}

// scan handles both single-file and directory targets.
func scan(ctx context.Context, s *scanner.Scanner, path string, profile *scanner.Profile) (*types.ScanResults, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return s.ScanDir(ctx, path, profile)
	}

	record, err := s.ScanFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return &types.ScanResults{
		Timestamp:           time.Now().UTC(),
		TotalFilesProcessed: 1,
		TotalPIIFound:       len(record.PIICandidates),
		Files:               []types.IndividualRecord{*record},
	}, nil
}

// watchLoop keeps scanning files created under root until the context is
// cancelled. Each new record is folded into the results and persisted.
func watchLoop(ctx context.Context, s *scanner.Scanner, root string, profile *scanner.Profile, store storage.ScanStore, results *types.ScanResults, out string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("watch mode needs a directory, got %s", root)
	}

	watcher := scanner.NewWatcher(root, profile, s, func(record *types.IndividualRecord) {
		results.Files = append(results.Files, *record)
		results.TotalFilesProcessed++
		results.TotalPIIFound += len(record.PIICandidates)
		results.Timestamp = time.Now().UTC()
		log.Printf("Watched file scanned: %s (%d candidates)", record.FilePath, len(record.PIICandidates))

		if err := writeResults(results, out); err != nil {
			log.Printf("Failed to write results: %v", err)
		}
		if store != nil {
			if err := saveRun(ctx, store, root, results); err != nil {
				log.Printf("Failed to save run: %v", err)
			}
		}
	})

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	watcher.Stop()
	return nil
}

func saveRun(ctx context.Context, store storage.ScanStore, sourcePath string, results *types.ScanResults) error {
	run := &storage.ScanRun{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		SourcePath: sourcePath,
		Results:    results,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		return err
	}
	log.Printf("Saved scan run %s", run.ID)
	return nil
}

func writeResults(results *types.ScanResults, out string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(out, data, 0o644)
}

func openStore(cfg *config.Config) (storage.ScanStore, error) {
	switch cfg.Storage.StorageEngine {
	case "postgres":
		return postgres.New(cfg.Storage.PostgresDSN)
	default:
		return sqlite.New(cfg.Storage.DataPath)
	}
}
