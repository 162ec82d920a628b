package types

import (
	"fmt"
	"strings"
)

// Record is one row returned by a platform query, keyed by field name.
type Record map[string]any

// FieldMetadata describes one field of a platform object schema, as
// returned by the describe endpoint.
type FieldMetadata struct {
	Name       string `json:"name"`
	SoapType   string `json:"soapType"`
	Filterable bool   `json:"filterable"`
}

// FieldFilter is one field=value predicate restricting a user query.
// Value is an already-formatted literal; quoting is decided by the
// field's soap type, not by the caller.
type FieldFilter struct {
	Field string
	Value string
}

type PlatformMessage struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode,omitempty"`
}

type PlatformMessages []PlatformMessage

// Join concatenates every message with "; ".  Entries without a message
// text are reported as unknown rather than dropped.
func (m PlatformMessages) Join() string {
	parts := make([]string, 0, len(m))
	for _, entry := range m {
		message := entry.Message
		if message == "" {
			message = "Unknown error."
		}
		parts = append(parts, message)
	}
	return strings.Join(parts, "; ")
}

// PlatformError is a request the platform rejected: a non-2xx response
// carrying the platform's error list.
type PlatformError struct {
	StatusCode int
	Errors     PlatformMessages
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform rejected request (status=%d): %s", e.StatusCode, e.Errors.Join())
}

// SaveResult is the platform's response to a record create. Success must
// be inspected explicitly; a 2xx status alone does not mean the record
// was created.
type SaveResult struct {
	ID      string           `json:"id"`
	Success bool             `json:"success"`
	Errors  PlatformMessages `json:"errors"`
}
