package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piisweep/piisweep/internal/config"
	"github.com/piisweep/piisweep/internal/resolve"
	"github.com/piisweep/piisweep/internal/storage"
	"github.com/piisweep/piisweep/pkg/types"
)

type fakeStore struct {
	runs map[string]*storage.ScanRun
}

func (f *fakeStore) SaveRun(_ context.Context, run *storage.ScanRun) error {
	f.runs[run.ID] = run
	return nil
}

func (f *fakeStore) GetRun(_ context.Context, id string) (*storage.ScanRun, error) {
	run, ok := f.runs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return run, nil
}

func (f *fakeStore) LatestRun(_ context.Context) (*storage.ScanRun, error) {
	var latest *storage.ScanRun
	for _, run := range f.runs {
		if latest == nil || run.CreatedAt.After(latest.CreatedAt) {
			latest = run
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return latest, nil
}

func (f *fakeStore) ListRuns(_ context.Context) ([]storage.RunInfo, error) {
	var infos []storage.RunInfo
	for _, run := range f.runs {
		infos = append(infos, storage.RunInfo{ID: run.ID, CreatedAt: run.CreatedAt})
	}
	return infos, nil
}

func (f *fakeStore) Close() error { return nil }

func seededStore() *fakeStore {
	return &fakeStore{runs: map[string]*storage.ScanRun{
		"run-1": {
			ID:        "run-1",
			CreatedAt: time.Now().UTC(),
			Results: &types.ScanResults{
				TotalFilesProcessed: 2,
				Files: []types.IndividualRecord{
					{
						FileName: "a.txt", FilePath: "/docs/a.txt",
						PIICandidates: []types.PIICandidate{
							{Value: "123-45-6789", PIIType: "SSN", Confidence: types.ConfidenceHigh},
						},
					},
					{
						FileName: "b.txt", FilePath: "/docs/b.txt",
						PIICandidates: []types.PIICandidate{
							{Value: "123-45-6789", PIIType: "Social Security Number", Confidence: types.ConfidenceMedium},
						},
					},
				},
			},
		},
	}}
}

func devConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Security.SecurityMode = "development"
	return cfg
}

func TestGetResolution(t *testing.T) {
	h := NewHandlers(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/api/resolution?run=run-1", nil)
	rec := httptest.NewRecorder()
	h.GetResolution(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resolution resolve.Resolution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolution))
	assert.Equal(t, 2, resolution.Summary.TotalOccurrences)
	require.Len(t, resolution.ValueGroups, 1)
	assert.True(t, resolution.ValueGroups[0].HasTypeConflict)
}

func TestGetResolution_DefaultsToLatestRun(t *testing.T) {
	h := NewHandlers(seededStore())

	rec := httptest.NewRecorder()
	h.GetResolution(rec, httptest.NewRequest(http.MethodGet, "/api/resolution", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetResolution_UnknownRun(t *testing.T) {
	h := NewHandlers(seededStore())

	rec := httptest.NewRecorder()
	h.GetResolution(rec, httptest.NewRequest(http.MethodGet, "/api/resolution?run=missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetResolution_OptionsFromQuery(t *testing.T) {
	h := NewHandlers(seededStore())

	req := httptest.NewRequest(http.MethodGet,
		"/api/resolution?run=run-1&ambiguous_only=true&normalize_values=true", nil)
	rec := httptest.NewRecorder()
	h.GetResolution(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resolution resolve.Resolution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolution))
	assert.True(t, resolution.Options.AmbiguousOnly)
	assert.True(t, resolution.Options.NormalizeValues)
	// ambiguous_only drops the high-confidence occurrence.
	assert.Equal(t, 1, resolution.Summary.TotalOccurrences)
}

func TestGetResolution_BadOptions(t *testing.T) {
	h := NewHandlers(seededStore())

	for _, query := range []string{"ambiguous_only=banana", "min_confidence=certain"} {
		rec := httptest.NewRecorder()
		h.GetResolution(rec, httptest.NewRequest(http.MethodGet, "/api/resolution?run=run-1&"+query, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestGetConflicts(t *testing.T) {
	h := NewHandlers(seededStore())

	rec := httptest.NewRecorder()
	h.GetConflicts(rec, httptest.NewRequest(http.MethodGet, "/api/conflicts?run=run-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Conflicts []resolve.Conflict `json:"conflicts"`
		Summary   resolve.Summary    `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Conflicts)
	assert.Equal(t, len(body.Conflicts), body.Summary.TotalConflicts)
}

func TestListRuns_EmptyIsArray(t *testing.T) {
	h := NewHandlers(&fakeStore{runs: map[string]*storage.ScanRun{}})

	rec := httptest.NewRecorder()
	h.ListRuns(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetRun_NotFound(t *testing.T) {
	h := NewHandlers(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	h.GetRun(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("development mode skips auth", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAuth(ok, devConfig()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	prodCfg := &config.Config{}
	prodCfg.Security.SecurityMode = "production"
	prodCfg.Security.APIToken = "secret-token"

	t.Run("production rejects missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAuth(ok, prodCfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("production accepts bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
		req.Header.Set("Authorization", "Bearer secret-token")
		rec := httptest.NewRecorder()
		RequireAuth(ok, prodCfg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimitMiddleware(ok, NewRateLimiter(1, 2))

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
		statuses = append(statuses, rec.Code)
	}
	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[3])
}

func TestStartServesHealth(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := devConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.RateLimitPerSecond = 100
	cfg.Server.RateLimitBurst = 100

	addr, hub, err := Start(ctx, cfg, seededStore())
	require.NoError(t, err)
	require.NotNil(t, hub)

	resp, err := http.Get("http://" + addr + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
