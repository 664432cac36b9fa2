package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/piisweep/piisweep/internal/config"
	"github.com/piisweep/piisweep/internal/llm"
	"github.com/piisweep/piisweep/internal/scanner"
	"github.com/piisweep/piisweep/internal/server"
	"github.com/piisweep/piisweep/internal/storage"
	"github.com/piisweep/piisweep/internal/storage/postgres"
	"github.com/piisweep/piisweep/internal/storage/sqlite"
	"github.com/piisweep/piisweep/pkg/types"
)

func main() {
	watch := flag.String("watch", "", "Directory to watch; new files are scanned, persisted, and broadcast on /ws")
	profilePath := flag.String("profile", "", "Path to a YAML scan profile for watch mode")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, hub, err := server.Start(ctx, cfg, store)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("PII review API running at http://%s", addr)

	if *watch != "" {
		watcher, err := startWatcher(ctx, cfg, store, hub, *watch, *profilePath)
		if err != nil {
			log.Fatalf("Failed to start watcher: %v", err)
		}
		defer watcher.Stop()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// startWatcher scans files created under root, saves each as a run, and
// forwards scan progress to websocket subscribers.
func startWatcher(ctx context.Context, cfg *config.Config, store storage.ScanStore, hub *server.WebSocketHub, root, profilePath string) (*scanner.Watcher, error) {
	client, err := llm.NewTextGenerator(cfg.LLM)
	if err != nil {
		return nil, err
	}
	extractor := llm.NewExtractor(client, cfg.Scan.RequestsPerSecond)

	chunker := scanner.Chunker{
		ChunkSize:         cfg.Scan.ChunkSize,
		OverlapPercentage: cfg.Scan.OverlapPercentage,
	}
	s := scanner.New(extractor, chunker, cfg.Scan.Workers)
	s.SetProgressCallback(hub.ProgressBroadcaster())

	var profile *scanner.Profile
	if profilePath != "" {
		profile, err = scanner.LoadProfile(profilePath)
		if err != nil {
			return nil, err
		}
	}

	watcher := scanner.NewWatcher(root, profile, s, func(record *types.IndividualRecord) {
		run := &storage.ScanRun{
			ID:         uuid.NewString(),
			CreatedAt:  time.Now().UTC(),
			SourcePath: record.FilePath,
			Results: &types.ScanResults{
				Timestamp:           time.Now().UTC(),
				TotalFilesProcessed: 1,
				TotalPIIFound:       len(record.PIICandidates),
				Files:               []types.IndividualRecord{*record},
			},
		}
		if err := store.SaveRun(ctx, run); err != nil {
			log.Printf("Failed to save watched scan run: %v", err)
			return
		}
		log.Printf("Saved scan run %s for %s (%d candidates)", run.ID, record.FilePath, len(record.PIICandidates))
	})

	if err := watcher.Start(ctx); err != nil {
		return nil, err
	}
	return watcher, nil
}

func openStore(cfg *config.Config) (storage.ScanStore, error) {
	switch cfg.Storage.StorageEngine {
	case "postgres":
		return postgres.New(cfg.Storage.PostgresDSN)
	default:
		return sqlite.New(cfg.Storage.DataPath)
	}
}
