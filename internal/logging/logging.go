// Package logging builds the process logger and turns sync events into
// structured log entries.
package logging

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"engagesync/youtube"
)

// New returns a logger writing to out at the given level.
// format is "text" or "json".
func New(level, format string, out io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)

	switch format {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logger, nil
}

// LogObserver logs every sync event with its run ID attached.
type LogObserver struct {
	logger log.FieldLogger
}

// NewLogObserver returns an Observer that logs through logger.
func NewLogObserver(logger log.FieldLogger) *LogObserver {
	return &LogObserver{logger: logger}
}

// Observe implements youtube.Observer.
func (o *LogObserver) Observe(e youtube.Event) {
	entry := o.logger.WithField("run_id", e.RunID)

	switch e.Kind {
	case youtube.EventRunStarted:
		entry.WithField("rows", e.Count).Info("rows listed")

	case youtube.EventNoVideoID:
		entry.WithFields(log.Fields{
			"record_id": e.RecordID,
			"url":       e.URL,
		}).Warn("no video id in url, skipping")

	case youtube.EventStatsUnavailable:
		fields := log.Fields{
			"record_id": e.RecordID,
			"url":       e.URL,
			"video_id":  e.VideoID,
		}
		var statsErr *youtube.StatsError
		if errors.As(e.Err, &statsErr) {
			if statsErr.StatusCode != 0 {
				fields["status"] = statsErr.StatusCode
			}
			if statsErr.QuotaExceeded() {
				fields["quota_exceeded"] = true
			}
		}
		entry.WithError(e.Err).WithFields(fields).Warn("no stats for video, skipping")

	case youtube.EventStatsFetched:
		entry.WithFields(log.Fields{
			"record_id": e.RecordID,
			"video_id":  e.VideoID,
			"views":     e.Metrics.Views,
			"likes":     e.Metrics.Likes,
			"comments":  e.Metrics.Comments,
		}).Info("queued update")

	case youtube.EventChunkFailed:
		entry.WithError(e.Err).WithFields(log.Fields{
			"chunk":      e.Chunk,
			"record_ids": e.RecordIDs,
			"status":     e.StatusCode,
			"body":       e.Body,
		}).Warn("update chunk rejected")

	case youtube.EventNoUpdates:
		entry.Info("no updates to apply")

	case youtube.EventRunFinished:
		fields := log.Fields{"written": e.Count}
		if r := e.Result; r != nil {
			fields["outcome"] = r.Outcome
			fields["rows"] = r.Rows
			fields["updates"] = r.Updates
			fields["skipped_no_video_id"] = r.SkippedNoVideoID
			fields["skipped_no_stats"] = r.SkippedNoStats
			fields["failed_chunks"] = r.FailedChunks
			fields["duration"] = r.FinishedAt.Sub(r.StartedAt).String()
		}
		entry.WithFields(fields).Info("sync finished")

	case youtube.EventRunAborted:
		entry.WithError(e.Err).Error("sync aborted")

	default:
		entry.WithField("kind", e.Kind).Debug("sync event")
	}
}
