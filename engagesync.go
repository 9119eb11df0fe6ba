package engagesync

import (
	"context"
	"fmt"
	"net/url"

	log "github.com/sirupsen/logrus"

	"engagesync/config"
	xhttp "engagesync/http"
	"engagesync/internal/logging"
	"engagesync/storage"
	"engagesync/youtube"
)

// SyncResult is the summary of one run.
type SyncResult = youtube.SyncResult

// New wires the store, statistics and writer clients for cfg into a
// SyncManager whose events are logged through logger.
// The returned close function releases idle connections.
func New(ctx context.Context, cfg *config.Config, logger log.FieldLogger) (*youtube.SyncManager, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	httpCfg := xhttp.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPTimeout
	client := xhttp.New(httpCfg)

	storeURL, err := url.Parse(cfg.StoreURL)
	if err != nil || storeURL.Host == "" {
		return nil, nil, fmt.Errorf("invalid store url %q", cfg.StoreURL)
	}
	client.RateLimiter().SetCustomRate(storeURL.Hostname(), cfg.StoreRPS)

	store, err := storage.NewAirtableStore(client, storage.AirtableConfig{
		BaseURL:  cfg.StoreURL,
		APIKey:   cfg.StoreAPIKey,
		BaseID:   cfg.StoreBaseID,
		Table:    cfg.StoreTable,
		View:     cfg.StoreView,
		PageSize: cfg.PageSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create store client: %w", err)
	}

	fetcher, err := youtube.NewAPIStatsFetcher(ctx, youtube.APIStatsConfig{
		APIKey:     cfg.StatsAPIKey,
		Endpoint:   cfg.StatsURL,
		HTTPClient: client.HTTPClient(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create stats client: %w", err)
	}

	writer := storage.NewBatchWriter(store)
	writer.Size = cfg.BatchSize
	writer.Pause = cfg.BatchPause

	sm := youtube.NewSyncManager(store, fetcher, writer)
	sm.Observer = logging.NewLogObserver(logger)
	sm.Fields = youtube.FieldMapping{
		URL:      cfg.URLField,
		Views:    cfg.ViewsField,
		Likes:    cfg.LikesField,
		Comments: cfg.CommentsField,
	}

	return sm, client.Close, nil
}

// Run performs one engagement sync with the given configuration.
// It returns an error only for invalid configuration or when the rows
// could not be listed; rejected update chunks are reported in the result.
func Run(ctx context.Context, cfg *config.Config, logger log.FieldLogger) (*SyncResult, error) {
	sm, closeFn, err := New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return sm.Run(ctx)
}
