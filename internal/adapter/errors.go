package adapter

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("client unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrServer       = errors.New("remote server error")

	ErrUnhealthy     = errors.New("remote unhealthy")
	ErrAuthDenied    = errors.New("authorisation denied")
	ErrAuthTimeout   = errors.New("timed out waiting for authorisation")
	ErrStateMismatch = errors.New("oauth state mismatch")
)

// APIError is a non-2xx response. It unwraps to one of the sentinel errors
// above when the status has one.
type APIError struct {
	Status int
	Body   string
	Err    error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("http %d: %v: %s", e.Status, e.Err, e.Body)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// BatchError reports a chunked write that stopped after Applied of Total
// records were accepted.
type BatchError struct {
	Object  string
	Op      string
	Applied int
	Total   int
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s %s: %d of %d applied: %v", e.Op, e.Object, e.Applied, e.Total, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
