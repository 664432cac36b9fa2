// Package server provides the HTTP review API and its lifecycle management.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/piisweep/piisweep/internal/resolve"
	"github.com/piisweep/piisweep/internal/storage"
	"github.com/piisweep/piisweep/pkg/types"
)

// Handlers serves the review API over a scan store.
type Handlers struct {
	store storage.ScanStore
}

// NewHandlers creates the API handlers.
func NewHandlers(store storage.ScanStore) *Handlers {
	return &Handlers{store: store}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// ListRuns handles GET /api/runs.
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.ListRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		log.Printf("server: list runs: %v", err)
		return
	}
	if runs == nil {
		runs = []storage.RunInfo{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun handles GET /api/runs/{id}.
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.GetRun(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load run")
		log.Printf("server: get run: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetResolution handles GET /api/resolution. Query parameters: run (defaults
// to the latest), ambiguous_only, min_confidence, normalize_values,
// include_high_confidence_in_conflicts.
func (h *Handlers) GetResolution(w http.ResponseWriter, r *http.Request) {
	resolution, ok := h.resolveFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resolution)
}

// GetConflicts handles GET /api/conflicts: the conflict list plus summary,
// without the full groups payload.
func (h *Handlers) GetConflicts(w http.ResponseWriter, r *http.Request) {
	resolution, ok := h.resolveFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conflicts": resolution.Conflicts,
		"summary":   resolution.Summary,
	})
}

func (h *Handlers) resolveFromQuery(w http.ResponseWriter, r *http.Request) (*resolve.Resolution, bool) {
	var run *storage.ScanRun
	var err error
	if id := r.URL.Query().Get("run"); id != "" {
		run, err = h.store.GetRun(r.Context(), id)
	} else {
		run, err = h.store.LatestRun(r.Context())
	}
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no scan run available")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load run")
		log.Printf("server: load run for resolution: %v", err)
		return nil, false
	}

	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	engine := resolve.NewEngine()
	if err := engine.LoadScanResults(run.Results, opts); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return nil, false
	}
	resolution, err := engine.Resolve()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return nil, false
	}
	return resolution, true
}

func optionsFromQuery(r *http.Request) (resolve.Options, error) {
	opts := resolve.DefaultOptions()
	q := r.URL.Query()

	for param, target := range map[string]*bool{
		"ambiguous_only":                       &opts.AmbiguousOnly,
		"normalize_values":                     &opts.NormalizeValues,
		"include_high_confidence_in_conflicts": &opts.IncludeHighConfidenceInConflicts,
	} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, errors.New("invalid boolean for " + param)
		}
		*target = value
	}

	if raw := q.Get("min_confidence"); raw != "" {
		if !types.IsValidConfidence(raw) {
			return opts, errors.New("invalid min_confidence")
		}
		opts.MinConfidence = types.Confidence(raw)
	}
	return opts, nil
}
