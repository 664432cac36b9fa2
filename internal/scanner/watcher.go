package scanner

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/piisweep/piisweep/pkg/types"
)

// Watcher scans documents as they appear under a directory. It watches the
// root (non-recursive) and hands each completed record to the callback.
type Watcher struct {
	root     string
	profile  *Profile
	scanner  *Scanner
	onRecord func(*types.IndividualRecord)

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher over root. onRecord is invoked for every
// successfully scanned new file.
func NewWatcher(root string, profile *Profile, s *Scanner, onRecord func(*types.IndividualRecord)) *Watcher {
	if profile == nil {
		profile = DefaultProfile()
	}
	return &Watcher{
		root:     root,
		profile:  profile,
		scanner:  s,
		onRecord: onRecord,
		done:     make(chan struct{}),
	}
}

// Start begins watching. Call Stop to clean up.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.root); err != nil {
		_ = fsw.Close()
		return err
	}
	w.watcher = fsw

	go w.loop(ctx)
	log.Printf("scanner: watching %s for new documents", w.root)
	return nil
}

// Stop shuts down the watcher and waits for the event loop to exit.
// Safe to call when Start never ran or failed.
func (w *Watcher) Stop() {
	if w.watcher == nil {
		return
	}
	_ = w.watcher.Close()
	<-w.done
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if evt.Op&fsnotify.Create != 0 {
				w.handleCreate(ctx, evt.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("scanner: watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleCreate(ctx context.Context, path string) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	if !w.profile.Matches(rel) {
		return
	}

	// Give the writer a moment to finish before reading the file.
	time.Sleep(200 * time.Millisecond)

	record, err := w.scanner.ScanFile(ctx, path)
	if err != nil {
		log.Printf("scanner: failed to scan new file %s: %v", path, err)
		return
	}
	if w.onRecord != nil {
		w.onRecord(record)
	}
}
