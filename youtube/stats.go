package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// ErrStatsUnavailable indicates statistics could not be obtained for a video.
// Every error returned by a StatsFetcher matches it with errors.Is.
var ErrStatsUnavailable = errors.New("youtube: statistics unavailable")

// errNoItems reports a successful response that did not contain the video.
var errNoItems = errors.New("no matching video in response")

// Metrics holds the public engagement counters of one video.
// The three counters are always fetched together.
type Metrics struct {
	Views    uint64 `json:"views"`
	Likes    uint64 `json:"likes"`
	Comments uint64 `json:"comments"`
}

// StatsFetcher fetches engagement statistics for a single video.
type StatsFetcher interface {
	FetchStats(ctx context.Context, videoID string) (Metrics, error)
}

// StatsError wraps a failed statistics lookup.
type StatsError struct {
	// VideoID is the video that was looked up.
	VideoID string
	// StatusCode is the HTTP status of the API response, or 0 if none was received.
	StatusCode int
	// Reason is the first API error reason (e.g., "quotaExceeded"), if any.
	Reason string
	// Err is the underlying error.
	Err error
}

// Error returns a string representation of the statistics error.
func (e *StatsError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("youtube: statistics unavailable for %s (status %d): %v", e.VideoID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("youtube: statistics unavailable for %s: %v", e.VideoID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StatsError) Unwrap() error { return e.Err }

// QuotaExceeded reports whether the API key ran out of daily quota.
// Every later lookup in the same run will fail the same way.
func (e *StatsError) QuotaExceeded() bool {
	return e.Reason == "quotaExceeded" || e.Reason == "dailyLimitExceeded"
}

// Is reports whether target is ErrStatsUnavailable.
func (e *StatsError) Is(target error) bool { return target == ErrStatsUnavailable }

// APIStatsConfig configures an APIStatsFetcher.
type APIStatsConfig struct {
	// APIKey is sent as the "key" query parameter.
	APIKey string
	// Endpoint overrides the API root (e.g., "https://youtube.googleapis.com/").
	Endpoint string
	// HTTPClient supplies the transport and timeout; its transport is
	// wrapped to add the API key. Nil uses http.DefaultTransport.
	HTTPClient *http.Client
}

// APIStatsFetcher implements StatsFetcher using YouTube Data API v3
// videos.list with part=statistics. It issues exactly one request per
// lookup and never retries.
type APIStatsFetcher struct {
	service *ytapi.Service
}

// NewAPIStatsFetcher creates a statistics fetcher authenticated with an API key.
func NewAPIStatsFetcher(ctx context.Context, cfg APIStatsConfig) (*APIStatsFetcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key required")
	}

	base := http.DefaultTransport
	client := &http.Client{}
	if cfg.HTTPClient != nil {
		if cfg.HTTPClient.Transport != nil {
			base = cfg.HTTPClient.Transport
		}
		client.Timeout = cfg.HTTPClient.Timeout
	}
	client.Transport = &transport.APIKey{Key: cfg.APIKey, Transport: base}

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	service, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &APIStatsFetcher{service: service}, nil
}

// FetchStats returns the view, like and comment counts of a video.
// Missing counters (e.g., likes hidden by the uploader) are reported as zero.
func (f *APIStatsFetcher) FetchStats(ctx context.Context, videoID string) (Metrics, error) {
	if videoID == "" {
		return Metrics{}, &StatsError{Err: fmt.Errorf("empty video id")}
	}

	resp, err := f.service.Videos.List([]string{"statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		statsErr := &StatsError{VideoID: videoID, Err: err}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			statsErr.StatusCode = apiErr.Code
			if len(apiErr.Errors) > 0 {
				statsErr.Reason = apiErr.Errors[0].Reason
			}
		}
		return Metrics{}, statsErr
	}

	if len(resp.Items) == 0 {
		return Metrics{}, &StatsError{VideoID: videoID, StatusCode: resp.HTTPStatusCode, Err: errNoItems}
	}

	stats := resp.Items[0].Statistics
	if stats == nil {
		return Metrics{}, nil
	}

	return Metrics{
		Views:    stats.ViewCount,
		Likes:    stats.LikeCount,
		Comments: stats.CommentCount,
	}, nil
}
