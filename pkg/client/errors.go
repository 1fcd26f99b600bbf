package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound reports a 404 from the server. Image fetches treat it as
// "use the default asset" rather than a user-facing failure.
var ErrNotFound = errors.New("not found")

// ValidationError reports a local precondition failure. No request was sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// APIError reports a non-2xx response, carrying the server's message when the
// body held a decodable envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// Is lets callers match a 404 APIError against ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}
