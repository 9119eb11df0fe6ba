package storage

import (
	"context"
	"errors"
	"time"

	xhttp "engagesync/http"
)

// DefaultBatchPause is the pause between chunk writes that keeps the sync
// under the store's rate limit.
const DefaultBatchPause = 250 * time.Millisecond

// BatchWriter partitions updates into chunks and writes them one at a time.
// A failed chunk is recorded and the remaining chunks are still written.
type BatchWriter struct {
	updater RecordUpdater

	// Size is the chunk size, clamped to 1..MaxBatchSize.
	Size int
	// Pause is the wait between consecutive chunk requests.
	Pause time.Duration

	sleep func(context.Context, time.Duration) error
}

// NewBatchWriter creates a writer with the store's maximum chunk size and
// the default pause.
func NewBatchWriter(updater RecordUpdater) *BatchWriter {
	return &BatchWriter{
		updater: updater,
		Size:    MaxBatchSize,
		Pause:   DefaultBatchPause,
		sleep:   sleepContext,
	}
}

// WriteResult summarizes a batch write.
type WriteResult struct {
	// Chunks is the number of update requests issued.
	Chunks int
	// Written is the number of records in chunks that succeeded.
	Written int
	// Failures lists the chunks that did not succeed.
	Failures []ChunkFailure
}

// ChunkFailure describes one chunk the store rejected.
type ChunkFailure struct {
	// Index is the zero-based chunk position.
	Index int
	// RecordIDs are the records the chunk tried to update.
	RecordIDs []string
	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int
	// Body is the response body, if any.
	Body string
	// Err is the underlying error.
	Err error
}

// Write issues one update request per chunk, pausing between requests.
// It returns an error only if ctx is done; chunk failures are reported in
// the result.
func (w *BatchWriter) Write(ctx context.Context, updates []RecordUpdate) (*WriteResult, error) {
	result := &WriteResult{}

	for i, chunk := range Chunk(updates, w.chunkSize()) {
		if i > 0 {
			if err := w.wait(ctx); err != nil {
				return result, err
			}
		}

		result.Chunks++
		if err := w.updater.UpdateRecords(ctx, chunk); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Failures = append(result.Failures, newChunkFailure(i, chunk, err))
			continue
		}
		result.Written += len(chunk)
	}

	return result, nil
}

// Chunk splits updates into consecutive slices of at most size elements.
func Chunk(updates []RecordUpdate, size int) [][]RecordUpdate {
	if size <= 0 {
		size = MaxBatchSize
	}

	chunks := make([][]RecordUpdate, 0, (len(updates)+size-1)/size)
	for start := 0; start < len(updates); start += size {
		end := min(start+size, len(updates))
		chunks = append(chunks, updates[start:end])
	}
	return chunks
}

func (w *BatchWriter) chunkSize() int {
	if w.Size <= 0 || w.Size > MaxBatchSize {
		return MaxBatchSize
	}
	return w.Size
}

func (w *BatchWriter) wait(ctx context.Context) error {
	sleep := w.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, w.Pause)
}

func newChunkFailure(index int, chunk []RecordUpdate, err error) ChunkFailure {
	f := ChunkFailure{
		Index:     index,
		RecordIDs: make([]string, len(chunk)),
		Err:       err,
	}
	for i, u := range chunk {
		f.RecordIDs[i] = u.ID
	}

	var httpErr *xhttp.HTTPError
	if errors.As(err, &httpErr) {
		f.StatusCode = httpErr.StatusCode
		f.Body = httpErr.BodyString()
	}
	return f
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
