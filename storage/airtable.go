package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	xhttp "engagesync/http"
)

const (
	// DefaultBaseURL is the public tabular store REST endpoint.
	DefaultBaseURL = "https://api.airtable.com"
	// MaxPageSize is the largest page the store will return.
	MaxPageSize = 100
	// MaxBatchSize is the most records the store accepts per update request.
	MaxBatchSize = 10
)

// AirtableConfig identifies the table to synchronize and how to reach it.
type AirtableConfig struct {
	// BaseURL is the API root (default: DefaultBaseURL).
	BaseURL string
	// APIKey is sent as a bearer token.
	APIKey string
	// BaseID identifies the base (e.g., "appXXXXXXXXXXXXXX").
	BaseID string
	// Table is the table name or ID.
	Table string
	// View optionally restricts listing to the rows of a named view.
	View string
	// PageSize is the listing page size, clamped to 1..MaxPageSize.
	PageSize int
}

// AirtableStore implements Store against the tabular store REST API.
type AirtableStore struct {
	client   *xhttp.Client
	tableURL string
	apiKey   string
	view     string
	pageSize int
}

// NewAirtableStore creates a store client for one table.
func NewAirtableStore(client *xhttp.Client, cfg AirtableConfig) (*AirtableStore, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: http client required", ErrInvalidInput)
	}
	if cfg.APIKey == "" || cfg.BaseID == "" || cfg.Table == "" {
		return nil, fmt.Errorf("%w: api key, base id and table are required", ErrInvalidInput)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return &AirtableStore{
		client:   client,
		tableURL: strings.TrimRight(baseURL, "/") + "/v0/" + url.PathEscape(cfg.BaseID) + "/" + url.PathEscape(cfg.Table),
		apiKey:   cfg.APIKey,
		view:     cfg.View,
		pageSize: pageSize,
	}, nil
}

// ListRecords pages through the table until a response carries no offset.
func (s *AirtableStore) ListRecords(ctx context.Context) ([]Record, error) {
	var all []Record
	offset := ""

	for page := 1; ; page++ {
		resp, err := s.client.Get(ctx, s.pageURL(offset), s.headers())
		if err != nil {
			return nil, &StorageError{Op: "list", Entity: "records", ID: "page " + strconv.Itoa(page), Err: err}
		}

		var body listResponse
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			return nil, &StorageError{
				Op:     "list",
				Entity: "records",
				ID:     "page " + strconv.Itoa(page),
				Err:    fmt.Errorf("%w: %v", ErrMalformedResponse, err),
			}
		}

		all = append(all, body.Records...)

		if body.Offset == "" {
			return all, nil
		}
		offset = body.Offset
	}
}

// UpdateRecords PATCHes one chunk of updates. Only HTTP 200 counts as success.
func (s *AirtableStore) UpdateRecords(ctx context.Context, updates []RecordUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	if len(updates) > MaxBatchSize {
		return &StorageError{
			Op:     "update",
			Entity: "records",
			Err:    fmt.Errorf("%w: %d updates exceeds limit of %d", ErrInvalidInput, len(updates), MaxBatchSize),
		}
	}

	payload, err := json.Marshal(updateRequest{Records: updates})
	if err != nil {
		return &StorageError{Op: "update", Entity: "records", Err: fmt.Errorf("encode request: %w", err)}
	}

	headers := s.headers()
	headers["Content-Type"] = "application/json"

	resp, err := s.client.Do(ctx, http.MethodPatch, s.tableURL, bytes.NewReader(payload), headers)
	if err != nil {
		return &StorageError{Op: "update", Entity: "records", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &StorageError{
			Op:     "update",
			Entity: "records",
			Err:    &xhttp.HTTPError{StatusCode: resp.StatusCode, Body: resp.Body},
		}
	}

	return nil
}

func (s *AirtableStore) pageURL(offset string) string {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(s.pageSize))
	if s.view != "" {
		q.Set("view", s.view)
	}
	if offset != "" {
		q.Set("offset", offset)
	}
	return s.tableURL + "?" + q.Encode()
}

func (s *AirtableStore) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + s.apiKey,
	}
}
