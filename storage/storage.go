// Package storage provides access to the tabular store that holds the rows
// being synchronized: paginated record listing and chunked record updates.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common storage conditions.
var (
	// ErrInvalidInput indicates invalid or malformed input was provided.
	ErrInvalidInput = errors.New("storage: invalid input")
	// ErrMalformedResponse indicates the store returned a body that could not be decoded.
	ErrMalformedResponse = errors.New("storage: malformed response")
)

// StorageError wraps storage errors with operation and entity context.
// Use errors.As() to extract this error type and get operation details:
//
//	var storErr *storage.StorageError
//	if errors.As(err, &storErr) {
//		fmt.Printf("Failed to %s %s %s: %v\n", storErr.Op, storErr.Entity, storErr.ID, storErr.Err)
//	}
type StorageError struct {
	// Op is the operation that failed ("list", "update").
	Op string
	// Entity is the entity type ("records").
	Entity string
	// ID identifies the table, page or chunk if applicable.
	ID string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the storage error.
func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("storage: %s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *StorageError) Unwrap() error { return e.Err }

// RecordSource lists every record visible to the configured credentials.
type RecordSource interface {
	// ListRecords returns all records, in store order, after every page
	// has been fetched. Any page failure fails the whole call.
	ListRecords(ctx context.Context) ([]Record, error)
}

// RecordUpdater writes one chunk of record updates.
type RecordUpdater interface {
	// UpdateRecords overwrites the given fields on the given records.
	// At most MaxBatchSize updates may be passed in one call.
	UpdateRecords(ctx context.Context, updates []RecordUpdate) error
}

// Store is the full tabular store interface.
type Store interface {
	RecordSource
	RecordUpdater
}
