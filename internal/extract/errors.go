package extract

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks a malformed request: missing or conflicting
// source, or an out-of-range option. Rejected before any network I/O.
var ErrInvalidRequest = errors.New("invalid extraction request")

// BackendError is a non-2xx response from the extraction service. Message
// carries the server's error text verbatim; it is shown to the user as-is,
// never replaced with a generic message.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("extraction service returned status %d", e.StatusCode)
}

// NetworkError is a transport-level failure. It surfaces to the user the
// same way a BackendError does.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "extraction service unreachable: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }
