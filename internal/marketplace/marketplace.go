// Package marketplace holds the error taxonomy and the aggregation
// primitives shared by the Wildberries and Ozon normalizers.
package marketplace

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited marks an upstream 429. The dashboard layer turns
	// it into a stale-cache read instead of an error section.
	ErrRateLimited = errors.New("rate limited by upstream")
	// ErrMissingCredentials short-circuits a marketplace whose
	// accounts are not configured, before any network call.
	ErrMissingCredentials = errors.New("marketplace credentials not configured")
)

// TransportError is an upstream HTTP failure: non-2xx status, timeout
// or connection error.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewStatusError builds the transport error for a non-success HTTP
// status, wrapping ErrRateLimited on 429 so callers can branch with
// errors.Is.
func NewStatusError(op string, status int) error {
	e := &TransportError{Op: op, StatusCode: status}
	if status == http.StatusTooManyRequests {
		e.Err = ErrRateLimited
	}
	return e
}

// ValidationError is a whole-payload shape mismatch. Individual
// malformed records are tolerated with zero-value substitution and
// never produce this.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: unexpected response shape: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
