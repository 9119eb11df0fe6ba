package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xhttp "engagesync/http"
)

// fakeTable serves a paginated record listing and records update requests.
type fakeTable struct {
	mu       sync.Mutex
	records  []Record
	listReqs []*http.Request
	patches  []updateRequest
	// patchStatus returns the status for the n-th (0-based) PATCH.
	patchStatus func(n int) int
	listStatus  int
}

func newFakeTable(n int) *fakeTable {
	ft := &fakeTable{}
	for i := 0; i < n; i++ {
		ft.records = append(ft.records, Record{
			ID:     fmt.Sprintf("rec%03d", i),
			Fields: map[string]any{"Asset Link": fmt.Sprintf("https://youtu.be/v%03d", i)},
		})
	}
	return ft
}

func (ft *fakeTable) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		ft.listReqs = append(ft.listReqs, r)
		if ft.listStatus != 0 {
			w.WriteHeader(ft.listStatus)
			w.Write([]byte(`{"error":{"type":"NOT_FOUND"}}`))
			return
		}

		pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
		start, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		end := min(start+pageSize, len(ft.records))

		resp := listResponse{Records: ft.records[start:end]}
		if end < len(ft.records) {
			resp.Offset = strconv.Itoa(end)
		}
		json.NewEncoder(w).Encode(resp)

	case http.MethodPatch:
		var req updateRequest
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		n := len(ft.patches)
		ft.patches = append(ft.patches, req)

		status := http.StatusOK
		if ft.patchStatus != nil {
			status = ft.patchStatus(n)
		}
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"type":"INVALID_VALUE_FOR_COLUMN"}}`))
			return
		}
		json.NewEncoder(w).Encode(req)
	}
}

func newTestStore(t *testing.T, ft *fakeTable, view string) *AirtableStore {
	t.Helper()

	server := httptest.NewServer(ft)
	t.Cleanup(server.Close)

	client := xhttp.New(nil)
	t.Cleanup(func() { client.Close() })

	store, err := NewAirtableStore(client, AirtableConfig{
		BaseURL: server.URL,
		APIKey:  "key123",
		BaseID:  "appBase",
		Table:   "Content Tracker",
		View:    view,
	})
	require.NoError(t, err)
	return store
}

func TestNewAirtableStoreValidation(t *testing.T) {
	client := xhttp.New(nil)
	defer client.Close()

	tests := []struct {
		name string
		cfg  AirtableConfig
	}{
		{"missing key", AirtableConfig{BaseID: "app", Table: "t"}},
		{"missing base", AirtableConfig{APIKey: "k", Table: "t"}},
		{"missing table", AirtableConfig{APIKey: "k", BaseID: "app"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAirtableStore(client, tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := NewAirtableStore(nil, AirtableConfig{APIKey: "k", BaseID: "app", Table: "t"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListRecordsPagination(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		wantPages int
	}{
		{"empty table", 0, 1},
		{"single partial page", 42, 1},
		{"exact page", 100, 1},
		{"three pages", 250, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := newFakeTable(tt.total)
			store := newTestStore(t, ft, "")

			records, err := store.ListRecords(context.Background())
			require.NoError(t, err)

			require.Len(t, records, tt.total)
			for i, rec := range records {
				assert.Equal(t, fmt.Sprintf("rec%03d", i), rec.ID, "records must keep store order")
			}
			assert.Len(t, ft.listReqs, tt.wantPages)
		})
	}
}

func TestListRecordsRequestShape(t *testing.T) {
	ft := newFakeTable(150)
	store := newTestStore(t, ft, "Grid view")

	_, err := store.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, ft.listReqs, 2)

	first := ft.listReqs[0]
	assert.Equal(t, "/v0/appBase/Content Tracker", first.URL.Path)
	assert.Equal(t, "Bearer key123", first.Header.Get("Authorization"))
	assert.Equal(t, "100", first.URL.Query().Get("pageSize"))
	assert.Equal(t, "Grid view", first.URL.Query().Get("view"))
	assert.False(t, first.URL.Query().Has("offset"))

	second := ft.listReqs[1]
	assert.Equal(t, "100", second.URL.Query().Get("offset"))
	assert.Equal(t, "Grid view", second.URL.Query().Get("view"))
}

func TestListRecordsWithoutView(t *testing.T) {
	ft := newFakeTable(3)
	store := newTestStore(t, ft, "")

	_, err := store.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, ft.listReqs, 1)
	assert.False(t, ft.listReqs[0].URL.Query().Has("view"))
}

func TestListRecordsFailure(t *testing.T) {
	ft := newFakeTable(3)
	ft.listStatus = http.StatusNotFound
	store := newTestStore(t, ft, "")

	records, err := store.ListRecords(context.Background())
	require.Error(t, err)
	assert.Nil(t, records)

	var storErr *StorageError
	require.ErrorAs(t, err, &storErr)
	assert.Equal(t, "list", storErr.Op)

	var httpErr *xhttp.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestListRecordsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records": [`))
	}))
	defer server.Close()

	client := xhttp.New(nil)
	defer client.Close()

	store, err := NewAirtableStore(client, AirtableConfig{BaseURL: server.URL, APIKey: "k", BaseID: "app", Table: "t"})
	require.NoError(t, err)

	_, err = store.ListRecords(context.Background())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestUpdateRecords(t *testing.T) {
	ft := newFakeTable(0)
	store := newTestStore(t, ft, "")

	updates := []RecordUpdate{
		{ID: "r1", Fields: map[string]any{"Views": uint64(10), "Likes": uint64(2), "Comments": uint64(1)}},
		{ID: "r2", Fields: map[string]any{"Views": uint64(0), "Likes": uint64(0), "Comments": uint64(0)}},
	}

	require.NoError(t, store.UpdateRecords(context.Background(), updates))
	require.Len(t, ft.patches, 1)

	got := ft.patches[0].Records
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, map[string]any{"Views": 10.0, "Likes": 2.0, "Comments": 1.0}, got[0].Fields)
	assert.Equal(t, "r2", got[1].ID)
}

func TestUpdateRecordsEmpty(t *testing.T) {
	ft := newFakeTable(0)
	store := newTestStore(t, ft, "")

	require.NoError(t, store.UpdateRecords(context.Background(), nil))
	assert.Empty(t, ft.patches)
}

func TestUpdateRecordsTooMany(t *testing.T) {
	ft := newFakeTable(0)
	store := newTestStore(t, ft, "")

	updates := make([]RecordUpdate, MaxBatchSize+1)
	err := store.UpdateRecords(context.Background(), updates)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, ft.patches)
}

func TestUpdateRecordsRejected(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"unprocessable", http.StatusUnprocessableEntity},
		{"created is not ok", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := newFakeTable(0)
			ft.patchStatus = func(int) int { return tt.status }
			store := newTestStore(t, ft, "")

			err := store.UpdateRecords(context.Background(), []RecordUpdate{{ID: "r1", Fields: map[string]any{"Views": 1}}})
			require.Error(t, err)

			var httpErr *xhttp.HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.status, httpErr.StatusCode)
		})
	}
}

func TestRecordStringField(t *testing.T) {
	rec := Record{ID: "r1", Fields: map[string]any{
		"Asset Link": "https://youtu.be/abc123",
		"Empty":      "",
		"Number":     42.0,
	}}

	v, ok := rec.StringField("Asset Link")
	assert.True(t, ok)
	assert.Equal(t, "https://youtu.be/abc123", v)

	_, ok = rec.StringField("Empty")
	assert.False(t, ok)
	_, ok = rec.StringField("Number")
	assert.False(t, ok)
	_, ok = rec.StringField("Missing")
	assert.False(t, ok)

	_, ok = Record{ID: "r2"}.StringField("Asset Link")
	assert.False(t, ok)
}
