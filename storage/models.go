package storage

// Record is a row of the tabular store.
type Record struct {
	// ID is the store-assigned record identifier (e.g., "recXXXXXXXXXXXXXX").
	ID string `json:"id"`
	// Fields maps field names to their JSON-decoded values.
	Fields map[string]any `json:"fields"`
	// CreatedTime is the record creation timestamp as reported by the store.
	CreatedTime string `json:"createdTime,omitempty"`
}

// StringField returns the named field if it holds a non-empty string.
func (r Record) StringField(name string) (string, bool) {
	v, ok := r.Fields[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// RecordUpdate overwrites Fields on the record identified by ID.
type RecordUpdate struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// listResponse is one page of a record listing.
type listResponse struct {
	Records []Record `json:"records"`
	// Offset is the continuation token; empty on the last page.
	Offset string `json:"offset,omitempty"`
}

// updateRequest is the body of a chunked record update.
type updateRequest struct {
	Records []RecordUpdate `json:"records"`
}
