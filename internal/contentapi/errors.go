package contentapi

import (
	"errors"
	"fmt"
)

// ErrAuth indicates an invalid or expired access credential (401/403).
// It is never retried and is fatal to a sync run.
var ErrAuth = errors.New("invalid or expired access credential")

// UpstreamError is a content API failure that survived the retry policy,
// carrying the last observed status code. A zero StatusCode means the
// transport itself failed.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("content api %s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("content api %s: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
