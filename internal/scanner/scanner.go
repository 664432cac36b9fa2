package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/piisweep/piisweep/internal/llm"
	"github.com/piisweep/piisweep/pkg/types"
)

// ProgressEvent describes one step of a scan. Events are delivered to the
// progress callback in completion order, which may differ from path order
// when documents are scanned concurrently.
type ProgressEvent struct {
	Type           string `json:"type"` // file_started, chunk_failed, file_completed, file_failed, scan_completed
	File           string `json:"file,omitempty"`
	CandidateCount int    `json:"candidate_count,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Scanner orchestrates document scans: chunk, extract per chunk, merge.
// A document's chunks are always extracted sequentially in index order so
// the deduplicator's later-chunk-wins semantics hold; separate documents may
// be scanned concurrently, each wholly owned by one worker.
type Scanner struct {
	extractor *llm.Extractor
	chunker   Chunker
	workers   int

	mu         sync.Mutex
	onProgress func(ProgressEvent)
}

// New creates a scanner. workers is the number of documents processed
// concurrently during directory scans (minimum 1).
func New(extractor *llm.Extractor, chunker Chunker, workers int) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		extractor: extractor,
		chunker:   chunker,
		workers:   workers,
	}
}

// SetProgressCallback registers a callback fired for each progress event.
// The callback may be invoked from multiple goroutines, one event at a time.
func (s *Scanner) SetProgressCallback(fn func(ProgressEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = fn
}

func (s *Scanner) emit(ev ProgressEvent) {
	s.mu.Lock()
	fn := s.onProgress
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// ScanFile scans a single document and returns its record.
// A failed chunk extraction is logged and skipped; the document scan
// completes with partial results rather than aborting.
func (s *Scanner) ScanFile(ctx context.Context, path string) (*types.IndividualRecord, error) {
	return s.scanFile(ctx, path, s.chunker)
}

func (s *Scanner) scanFile(ctx context.Context, path string, chunker Chunker) (*types.IndividualRecord, error) {
	s.emit(ProgressEvent{Type: "file_started", File: path})

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	chunks, err := chunker.Chunk(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to chunk %s: %w", path, err)
	}

	extractions := make([]types.ChunkExtraction, 0, len(chunks))
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// An empty window (zero-byte file) carries nothing to extract.
		if chunk.Content == "" {
			continue
		}

		result, err := s.extractor.ExtractChunk(ctx, chunk.Content)
		if err != nil {
			// Skip-and-continue: one bad chunk never aborts the document.
			log.Printf("scanner: %s chunk %d: %v", path, chunk.Index, err)
			s.emit(ProgressEvent{Type: "chunk_failed", File: path, Error: err.Error()})
			continue
		}
		extractions = append(extractions, *result)
	}

	merged := MergeChunkExtractions(extractions)
	record := &types.IndividualRecord{
		FileName:      filepath.Base(path),
		FilePath:      path,
		Name:          merged.Name,
		Address:       merged.Address,
		Phone:         merged.Phone,
		PIICandidates: merged.PIICandidates,
	}

	s.emit(ProgressEvent{Type: "file_completed", File: path, CandidateCount: len(record.PIICandidates)})
	return record, nil
}

// ScanDir walks root, scans every file the profile matches, and assembles
// the corpus results. Documents are scanned on a worker pool; a failed
// document is logged and skipped so one bad file never blocks the corpus.
func (s *Scanner) ScanDir(ctx context.Context, root string, profile *Profile) (*types.ScanResults, error) {
	if profile == nil {
		profile = DefaultProfile()
	}

	chunker := s.chunker
	if profile.ChunkSize > 0 {
		chunker.ChunkSize = profile.ChunkSize
	}
	if profile.OverlapPercentage >= 0 {
		chunker.OverlapPercentage = profile.OverlapPercentage
	}

	paths, err := s.collectPaths(root, profile)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		records []types.IndividualRecord
		wg      sync.WaitGroup
	)

	pathCh := make(chan string)
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range pathCh {
				record, err := s.scanFile(ctx, path, chunker)
				if err != nil {
					log.Printf("scanner: skipping %s: %v", path, err)
					s.emit(ProgressEvent{Type: "file_failed", File: path, Error: err.Error()})
					continue
				}
				mu.Lock()
				records = append(records, *record)
				mu.Unlock()
			}
		}()
	}

	for _, path := range paths {
		select {
		case <-ctx.Done():
			close(pathCh)
			wg.Wait()
			return nil, ctx.Err()
		case pathCh <- path:
		}
	}
	close(pathCh)
	wg.Wait()

	// Deterministic corpus order regardless of worker completion order.
	sort.Slice(records, func(i, j int) bool { return records[i].FilePath < records[j].FilePath })

	totalPII := 0
	for _, record := range records {
		totalPII += len(record.PIICandidates)
	}

	results := &types.ScanResults{
		Timestamp:           time.Now().UTC(),
		TotalFilesProcessed: len(records),
		TotalPIIFound:       totalPII,
		Files:               records,
	}

	s.emit(ProgressEvent{Type: "scan_completed", CandidateCount: totalPII})
	return results, nil
}

// collectPaths walks root and returns the profile-matched file paths in
// lexical order.
func (s *Scanner) collectPaths(root string, profile *Profile) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if !profile.Matches(rel) {
			return nil
		}
		if profile.MaxFileBytes > 0 {
			info, err := d.Info()
			if err != nil {
				return err
			}
			if info.Size() > profile.MaxFileBytes {
				log.Printf("scanner: skipping %s: exceeds max file size (%d bytes)", path, info.Size())
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return paths, nil
}
