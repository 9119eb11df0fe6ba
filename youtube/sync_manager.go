package youtube

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"engagesync/storage"
)

// FieldMapping names the row fields a sync reads and writes.
type FieldMapping struct {
	// URL is the field holding the video URL.
	URL string
	// Views, Likes and Comments receive the metric values.
	Views    string
	Likes    string
	Comments string
}

// DefaultFieldMapping returns the field names used by the content tracker table.
func DefaultFieldMapping() FieldMapping {
	return FieldMapping{
		URL:      "Asset Link",
		Views:    "Views",
		Likes:    "Likes",
		Comments: "Comments",
	}
}

// RecordWriter persists a full list of updates, typically by chunking it.
type RecordWriter interface {
	Write(ctx context.Context, updates []storage.RecordUpdate) (*storage.WriteResult, error)
}

// Outcome is the terminal state of a sync run.
type Outcome string

const (
	// OutcomeUpdated means updates were built and handed to the writer.
	OutcomeUpdated Outcome = "updated"
	// OutcomeNoUpdates means no row produced an update; nothing was written.
	OutcomeNoUpdates Outcome = "no_updates"
	// OutcomeAborted means the run stopped early (rows could not be listed,
	// or the context ended).
	OutcomeAborted Outcome = "aborted"
)

// SyncResult contains the outcome of a sync run.
type SyncResult struct {
	// RunID uniquely identifies the run in logs.
	RunID string
	// Outcome is the terminal state.
	Outcome Outcome
	// Rows is the number of rows listed from the store.
	Rows int
	// SkippedNoVideoID counts rows whose URL yielded no video ID.
	SkippedNoVideoID int
	// SkippedNoStats counts rows whose statistics were unavailable.
	SkippedNoStats int
	// Updates is the number of update payloads built.
	Updates int
	// Written is the number of records in chunks the store accepted.
	Written int
	// FailedChunks is the number of chunks the store rejected.
	FailedChunks int
	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time
}

// SyncManager drives one engagement sync: list rows, extract video IDs,
// fetch statistics and write the metrics back in one batch.
// It is sequential; one request is outstanding at a time.
type SyncManager struct {
	source  storage.RecordSource
	fetcher StatsFetcher
	writer  RecordWriter

	// Observer receives diagnostics (default: NopObserver).
	Observer Observer
	// Fields names the row fields (default: DefaultFieldMapping()).
	Fields FieldMapping

	newRunID func() string
}

// NewSyncManager creates a sync manager over the given collaborators.
func NewSyncManager(source storage.RecordSource, fetcher StatsFetcher, writer RecordWriter) *SyncManager {
	return &SyncManager{
		source:   source,
		fetcher:  fetcher,
		writer:   writer,
		Observer: NopObserver{},
		Fields:   DefaultFieldMapping(),
		newRunID: uuid.NewString,
	}
}

// Run performs one sync. Per-row failures are reported through the
// Observer and skipped; only a listing failure (or ctx ending) returns an
// error. A rejected update chunk does not fail the run.
func (sm *SyncManager) Run(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{
		RunID:     sm.newRunID(),
		StartedAt: time.Now(),
	}

	records, err := sm.source.ListRecords(ctx)
	if err != nil {
		sm.abort(result, err)
		return result, fmt.Errorf("list records: %w", err)
	}
	result.Rows = len(records)
	sm.emit(Event{Kind: EventRunStarted, RunID: result.RunID, Count: len(records)})

	var updates []storage.RecordUpdate
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			sm.abort(result, err)
			return result, err
		}
		if update, ok := sm.buildUpdate(ctx, result, rec); ok {
			updates = append(updates, update)
		}
	}
	result.Updates = len(updates)

	if len(updates) == 0 {
		sm.emit(Event{Kind: EventNoUpdates, RunID: result.RunID})
		sm.finish(result, OutcomeNoUpdates)
		return result, nil
	}

	written, err := sm.writer.Write(ctx, updates)
	if written != nil {
		result.Written = written.Written
		result.FailedChunks = len(written.Failures)
		for _, f := range written.Failures {
			sm.emit(Event{
				Kind:       EventChunkFailed,
				RunID:      result.RunID,
				Chunk:      f.Index,
				RecordIDs:  f.RecordIDs,
				StatusCode: f.StatusCode,
				Body:       f.Body,
				Err:        f.Err,
			})
		}
	}
	if err != nil {
		sm.abort(result, err)
		return result, fmt.Errorf("write updates: %w", err)
	}

	sm.finish(result, OutcomeUpdated)
	return result, nil
}

// buildUpdate turns one row into an update, or reports why it was skipped.
func (sm *SyncManager) buildUpdate(ctx context.Context, result *SyncResult, rec storage.Record) (storage.RecordUpdate, bool) {
	rawURL, _ := rec.StringField(sm.Fields.URL)

	videoID, ok := ExtractVideoID(rawURL)
	if !ok {
		result.SkippedNoVideoID++
		sm.emit(Event{Kind: EventNoVideoID, RunID: result.RunID, RecordID: rec.ID, URL: rawURL})
		return storage.RecordUpdate{}, false
	}

	metrics, err := sm.fetcher.FetchStats(ctx, videoID)
	if err != nil {
		result.SkippedNoStats++
		sm.emit(Event{
			Kind:     EventStatsUnavailable,
			RunID:    result.RunID,
			RecordID: rec.ID,
			URL:      rawURL,
			VideoID:  videoID,
			Err:      err,
		})
		return storage.RecordUpdate{}, false
	}

	sm.emit(Event{
		Kind:     EventStatsFetched,
		RunID:    result.RunID,
		RecordID: rec.ID,
		URL:      rawURL,
		VideoID:  videoID,
		Metrics:  metrics,
	})

	return storage.RecordUpdate{
		ID: rec.ID,
		Fields: map[string]any{
			sm.Fields.Views:    metrics.Views,
			sm.Fields.Likes:    metrics.Likes,
			sm.Fields.Comments: metrics.Comments,
		},
	}, true
}

func (sm *SyncManager) abort(result *SyncResult, err error) {
	result.Outcome = OutcomeAborted
	result.FinishedAt = time.Now()
	sm.emit(Event{Kind: EventRunAborted, RunID: result.RunID, Err: err, Result: result})
}

func (sm *SyncManager) finish(result *SyncResult, outcome Outcome) {
	result.Outcome = outcome
	result.FinishedAt = time.Now()
	sm.emit(Event{Kind: EventRunFinished, RunID: result.RunID, Count: result.Written, Result: result})
}

func (sm *SyncManager) emit(e Event) {
	if sm.Observer != nil {
		sm.Observer.Observe(e)
	}
}
