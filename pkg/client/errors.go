package client

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrExhausted is matched by the error returned once every attempt has failed.
var ErrExhausted = errors.New("retry budget exhausted")

type FailureKind int

const (
	// FailureStatus means the server answered with a non-200 status.
	FailureStatus FailureKind = iota + 1
	// FailureTransport covers connection errors, timeouts and undecodable bodies.
	FailureTransport
)

func (k FailureKind) String() string {
	switch k {
	case FailureStatus:
		return "status"
	case FailureTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// AttemptError describes why a single request attempt failed.
type AttemptError struct {
	Attempt    int
	Kind       FailureKind
	StatusCode int
	Body       string
	Err        error
}

func (e *AttemptError) Error() string {
	if e.Kind == FailureStatus {
		return fmt.Sprintf("attempt %d: api error (status %d): %s", e.Attempt, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("attempt %d: network error: %v", e.Attempt, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

type ExhaustedError struct {
	Attempts int
	Last     *AttemptError
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("no response after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("no response after %d attempts, last failure: %s", e.Attempts, e.Last.Error())
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

func (e *ExhaustedError) Unwrap() error {
	if e.Last == nil {
		return nil
	}
	return e.Last
}

func statusFailure(attempt, code int, body []byte) *AttemptError {
	return &AttemptError{Attempt: attempt, Kind: FailureStatus, StatusCode: code, Body: string(body)}
}

func transportFailure(attempt int, err error) *AttemptError {
	return &AttemptError{Attempt: attempt, Kind: FailureTransport, Err: err}
}
