package model

import (
	"fmt"
	"net/http"
	"time"
)

// HTTPError is a non-success answer from an upstream API (the model
// provider, mostly). Retry and error reporting classify on it.
type HTTPError struct {
	Service    string // upstream host, e.g. api.groq.com; may be empty
	StatusCode int
	RetryAfter time.Duration // zero unless the upstream sent Retry-After
	Err        error
}

func (e *HTTPError) Error() string {
	prefix := fmt.Sprintf("HTTP %d", e.StatusCode)
	if e.Service != "" {
		prefix = e.Service + ": " + prefix
	}
	if e.Err == nil {
		return prefix
	}
	return prefix + ": " + e.Err.Error()
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Transient reports whether the same request may succeed later: rate
// limiting and server-side failures. Other 4xx answers are request or
// credential problems.
func (e *HTTPError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
