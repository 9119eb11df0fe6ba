package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"engagesync"
	"engagesync/config"
	"engagesync/internal/logging"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "help", "-h", "--help":
			printUsage()
			return
		}
	}

	os.Exit(run())
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `engagesync - copy YouTube engagement counts into an Airtable table

Usage:
  engagesync          Run one sync and exit
  engagesync help     Show this help message

Required environment:
  AIRTABLE_API_KEY, AIRTABLE_BASE_ID, AIRTABLE_TABLE_NAME, YOUTUBE_API_KEY

Optional environment:
  AIRTABLE_VIEW_NAME        Only sync rows in this view
  ENGAGESYNC_CONFIG         Path to a YAML config file
  ENGAGESYNC_BATCH_PAUSE    Pause between update requests (default 250ms)
  ENGAGESYNC_LOG_LEVEL      debug, info, warn, error (default info)
  ENGAGESYNC_LOG_FORMAT     text or json (default text)

A .env file in the working directory is loaded first when present.
`)
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := engagesync.Run(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("sync failed")
		return 1
	}

	if result.FailedChunks > 0 {
		logger.WithField("failed_chunks", result.FailedChunks).Warn("some updates were rejected")
	}
	return 0
}
