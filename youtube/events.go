package youtube

// EventKind identifies what happened during a sync run.
type EventKind string

const (
	// EventRunStarted is emitted once the rows have been listed.
	EventRunStarted EventKind = "run_started"
	// EventNoVideoID is emitted when a row's URL yields no video ID.
	EventNoVideoID EventKind = "no_video_id"
	// EventStatsUnavailable is emitted when statistics could not be fetched.
	EventStatsUnavailable EventKind = "stats_unavailable"
	// EventStatsFetched is emitted when an update was queued for a row.
	EventStatsFetched EventKind = "stats_fetched"
	// EventChunkFailed is emitted for every update chunk the store rejected.
	EventChunkFailed EventKind = "chunk_failed"
	// EventNoUpdates is emitted when no row produced an update.
	EventNoUpdates EventKind = "no_updates"
	// EventRunFinished is emitted with the final counts.
	EventRunFinished EventKind = "run_finished"
	// EventRunAborted is emitted when the rows could not be listed.
	EventRunAborted EventKind = "run_aborted"
)

// Event is a structured diagnostic emitted by SyncManager.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind  EventKind
	RunID string

	RecordID string
	URL      string
	VideoID  string
	Metrics  Metrics

	// Chunk fields (EventChunkFailed).
	Chunk      int
	RecordIDs  []string
	StatusCode int
	Body       string

	// Count is the number of rows (EventRunStarted) or records written
	// (EventRunFinished).
	Count int
	// Result is set on EventRunFinished.
	Result *SyncResult

	Err error
}

// Observer receives sync events. Implementations are called from the sync
// goroutine and must not block for long.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

// NopObserver discards all events.
type NopObserver struct{}

// Observe does nothing.
func (NopObserver) Observe(Event) {}
