package engagesync

import (
	"engagesync/config"
	xhttp "engagesync/http"
	"engagesync/storage"
	"engagesync/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, engagesync.ErrMissingRequired) {
//		fmt.Println("set AIRTABLE_API_KEY and friends")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var storeErr *engagesync.StorageError
//	if errors.As(err, &storeErr) {
//		fmt.Printf("%s %s failed: %v\n", storeErr.Op, storeErr.ID, storeErr.Err)
//	}

// Exported error types from sub-packages:
//
// From config package:
//   - config.ErrMissingRequired: A credential or identifier is unset
//
// From youtube package:
//   - youtube.ErrStatsUnavailable: No statistics for a video
//   - youtube.StatsError: Statistics lookup failure with HTTP status
//
// From storage package:
//   - storage.ErrInvalidInput: Invalid input provided
//   - storage.ErrMalformedResponse: Store response could not be decoded
//   - storage.StorageError: General store operation error
//
// From http package:
//   - http.HTTPError: Non-2xx response with status and body

// Type aliases for convenient error handling.
type (
	// StatsError wraps a failed statistics lookup.
	StatsError = youtube.StatsError
	// StorageError wraps errors during store operations.
	StorageError = storage.StorageError
	// HTTPError carries the status and body of a non-2xx response.
	HTTPError = xhttp.HTTPError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrMissingRequired indicates a required setting is unset.
	ErrMissingRequired = config.ErrMissingRequired
	// ErrStatsUnavailable indicates no statistics could be obtained for a video.
	ErrStatsUnavailable = youtube.ErrStatsUnavailable

	// Storage errors
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = storage.ErrInvalidInput
	// ErrMalformedResponse indicates the store returned an undecodable body.
	ErrMalformedResponse = storage.ErrMalformedResponse
)
