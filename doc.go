// Package engagesync copies YouTube engagement counts into an Airtable table.
//
// Every row whose URL field links to a YouTube video gets its Views, Likes
// and Comments fields overwritten with the current statistics.
//
// Overview
//
// One run does the following, sequentially:
//
//   - List every row of the table (optionally restricted to a view)
//   - Extract a video ID from each row's URL field
//   - Fetch the video's statistics from the YouTube Data API
//   - Write the counts back in chunks of at most 10 records, pausing
//     between chunks
//
// Rows without a recognizable URL or without statistics are skipped and
// logged. A rejected chunk is logged and the remaining chunks are still
// written.
//
// Quick Start
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := engagesync.Run(ctx, cfg, logrus.StandardLogger())
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%d rows, %d written\n", result.Rows, result.Written)
//
// Configuration
//
// Settings are loaded from multiple sources:
//
//   1. Environment variables (highest priority, .env is read first)
//   2. Config file (engagesync.yaml or ~/.config/engagesync/engagesync.yaml)
//   3. Default values (lowest priority)
//
// Required environment variables:
//
//   - AIRTABLE_API_KEY: Store bearer token
//   - AIRTABLE_BASE_ID: Base identifier
//   - AIRTABLE_TABLE_NAME: Table name or ID
//   - YOUTUBE_API_KEY: YouTube Data API key
//
// Optional: AIRTABLE_VIEW_NAME, plus the ENGAGESYNC_* settings documented
// in the config package.
//
// Advanced Usage
//
// For more control, use the sub-packages directly:
//
//   - youtube: Video ID extraction, statistics and the sync manager
//   - storage: Table listing and chunked updates
//   - http: Rate limited HTTP client
//   - config: Configuration management
//
// Example with a custom observer:
//
//	sm, closeFn, err := engagesync.New(ctx, cfg, logger)
//	if err != nil {
//		return err
//	}
//	defer closeFn()
//	sm.Observer = youtube.ObserverFunc(func(e youtube.Event) {
//		if e.Kind == youtube.EventChunkFailed {
//			alert(e.RecordIDs)
//		}
//	})
//	result, err := sm.Run(ctx)
package engagesync
