package engagesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagesync/config"
	"engagesync/youtube"
)

type patchRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// fakeAPIs serves both the table and the statistics API from one server.
type fakeAPIs struct {
	mu sync.Mutex

	rows       []map[string]any
	stats      map[string][3]int
	listStatus int
	// rejectPatch makes the n-th PATCH (1-based) fail with 422.
	rejectPatch int

	statsCalls []string
	patches    [][]patchRecord
}

func (f *fakeAPIs) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/youtube/v3/videos":
		id := r.URL.Query().Get("id")
		f.statsCalls = append(f.statsCalls, id)
		w.Header().Set("Content-Type", "application/json")
		s, ok := f.stats[id]
		if !ok {
			fmt.Fprint(w, `{"items": []}`)
			return
		}
		fmt.Fprintf(w, `{"items": [{"id": %q, "statistics": {"viewCount": "%d", "likeCount": "%d", "commentCount": "%d"}}]}`, id, s[0], s[1], s[2])

	case r.URL.Path == "/v0/appBase/Tracker" && r.Method == http.MethodGet:
		if f.listStatus != 0 {
			w.WriteHeader(f.listStatus)
			fmt.Fprint(w, `{"error": "AUTHENTICATION_REQUIRED"}`)
			return
		}
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
		end := min(offset+size, len(f.rows))

		resp := map[string]any{"records": f.rows[offset:end]}
		if end < len(f.rows) {
			resp["offset"] = strconv.Itoa(end)
		}
		json.NewEncoder(w).Encode(resp)

	case r.URL.Path == "/v0/appBase/Tracker" && r.Method == http.MethodPatch:
		var body struct {
			Records []patchRecord `json:"records"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.patches = append(f.patches, body.Records)
		if len(f.patches) == f.rejectPatch {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"error": {"type": "INVALID_VALUE_FOR_COLUMN"}}`)
			return
		}
		json.NewEncoder(w).Encode(body)

	default:
		http.NotFound(w, r)
	}
}

func newTestConfig(serverURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.StoreAPIKey = "key"
	cfg.StoreBaseID = "appBase"
	cfg.StoreTable = "Tracker"
	cfg.StatsAPIKey = "yt-key"
	cfg.StoreURL = serverURL
	cfg.StatsURL = serverURL
	cfg.StoreRPS = 0
	cfg.BatchPause = 0
	return cfg
}

func tableRow(id, link string) map[string]any {
	return map[string]any{"id": id, "fields": map[string]any{"Asset Link": link}}
}

func TestRunEndToEnd(t *testing.T) {
	apis := &fakeAPIs{
		rows: []map[string]any{
			tableRow("r1", "https://youtu.be/abc123"),
			tableRow("r2", "https://example.com/not-a-video"),
			tableRow("r3", "https://www.youtube.com/watch?v=gone"),
		},
		stats: map[string][3]int{"abc123": {10, 2, 1}},
	}
	server := httptest.NewServer(apis)
	defer server.Close()

	logger, hook := test.NewNullLogger()
	result, err := Run(context.Background(), newTestConfig(server.URL), logger)
	require.NoError(t, err)

	assert.Equal(t, youtube.OutcomeUpdated, result.Outcome)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 1, result.SkippedNoVideoID)
	assert.Equal(t, 1, result.SkippedNoStats)
	assert.Equal(t, 1, result.Written)

	assert.Equal(t, []string{"abc123", "gone"}, apis.statsCalls)
	require.Len(t, apis.patches, 1)
	assert.Equal(t, []patchRecord{{
		ID:     "r1",
		Fields: map[string]any{"Views": 10.0, "Likes": 2.0, "Comments": 1.0},
	}}, apis.patches[0])

	require.NotEmpty(t, hook.AllEntries())
	for _, e := range hook.AllEntries() {
		assert.Equal(t, result.RunID, e.Data["run_id"])
	}
}

func TestRunChunksAndContinuesAfterRejection(t *testing.T) {
	apis := &fakeAPIs{stats: map[string][3]int{}, rejectPatch: 2}
	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("vid%02d", i)
		apis.rows = append(apis.rows, tableRow(fmt.Sprintf("rec%02d", i), "https://youtu.be/"+id))
		apis.stats[id] = [3]int{i, 0, 0}
	}
	server := httptest.NewServer(apis)
	defer server.Close()

	cfg := newTestConfig(server.URL)
	cfg.PageSize = 10

	logger, _ := test.NewNullLogger()
	result, err := Run(context.Background(), cfg, logger)
	require.NoError(t, err, "a rejected chunk does not fail the run")

	require.Len(t, apis.patches, 3)
	assert.Len(t, apis.patches[0], 10)
	assert.Len(t, apis.patches[1], 10)
	assert.Len(t, apis.patches[2], 5)
	assert.Equal(t, "rec00", apis.patches[0][0].ID)
	assert.Equal(t, "rec24", apis.patches[2][4].ID)

	assert.Equal(t, 25, result.Rows)
	assert.Equal(t, 25, result.Updates)
	assert.Equal(t, 15, result.Written)
	assert.Equal(t, 1, result.FailedChunks)
}

func TestRunNoUpdates(t *testing.T) {
	apis := &fakeAPIs{rows: []map[string]any{tableRow("r1", "")}}
	server := httptest.NewServer(apis)
	defer server.Close()

	logger, _ := test.NewNullLogger()
	result, err := Run(context.Background(), newTestConfig(server.URL), logger)
	require.NoError(t, err)

	assert.Equal(t, youtube.OutcomeNoUpdates, result.Outcome)
	assert.Empty(t, apis.statsCalls)
	assert.Empty(t, apis.patches)
}

func TestRunListFailure(t *testing.T) {
	apis := &fakeAPIs{listStatus: http.StatusUnauthorized}
	server := httptest.NewServer(apis)
	defer server.Close()

	logger, hook := test.NewNullLogger()
	result, err := Run(context.Background(), newTestConfig(server.URL), logger)
	require.Error(t, err)

	var storeErr *StorageError
	require.True(t, errors.As(err, &storeErr))
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	assert.Equal(t, youtube.OutcomeAborted, result.Outcome)
	assert.Empty(t, apis.statsCalls)
	assert.Empty(t, apis.patches)
	assert.Equal(t, "sync aborted", hook.LastEntry().Message)
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	logger, _ := test.NewNullLogger()

	_, err := Run(context.Background(), cfg, logger)
	assert.ErrorIs(t, err, ErrMissingRequired)
}
