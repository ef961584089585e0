package client

import (
	"errors"

	"github.com/Sternrassler/yt-finder/pkg/keypool"
	"google.golang.org/api/googleapi"
)

// ErrorClass represents a classification of failed API calls.
type ErrorClass string

const (
	// ErrorClassCredential covers quota exhaustion, rate limiting, access
	// denial and malformed keys (HTTP 403, 429, 400).
	ErrorClassCredential ErrorClass = "credential"

	// ErrorClassRequest covers every other HTTP error status.
	ErrorClassRequest ErrorClass = "request"

	// ErrorClassTransport covers connectivity failures, cancelled contexts
	// and undecodable responses.
	ErrorClassTransport ErrorClass = "transport"
)

// OutcomeKind tags the result of one attempt.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeCredentialFailure
	OutcomeOtherFailure
)

// String implements fmt.Stringer.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeCredentialFailure:
		return "credential_failure"
	case OutcomeOtherFailure:
		return "other_failure"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one attempt. Value is set only on
// success; Err only on failure.
type Outcome[T any] struct {
	Kind  OutcomeKind
	Value T
	Err   *APIError
}

// classify turns the raw (value, error) pair of a generated API call into
// an Outcome.
func classify[T any](v T, err error) Outcome[T] {
	if err == nil {
		return Outcome[T]{Kind: OutcomeSuccess, Value: v}
	}

	apiErr := toAPIError(err)
	if shouldRotate(apiErr.ErrorClass) {
		return Outcome[T]{Kind: OutcomeCredentialFailure, Err: apiErr}
	}
	return Outcome[T]{Kind: OutcomeOtherFailure, Err: apiErr}
}

// toAPIError extracts status and reason from a googleapi.Error. Anything
// else is a transport failure.
func toAPIError(err error) *APIError {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &APIError{
			ErrorClass: ErrorClassTransport,
			Message:    err.Error(),
			Err:        err,
		}
	}

	class := ErrorClassRequest
	if keypool.StatusForCode(gerr.Code).Rotatable() {
		class = ErrorClassCredential
	}

	var reason string
	if len(gerr.Errors) > 0 {
		reason = gerr.Errors[0].Reason
	}

	msg := gerr.Message
	if msg == "" {
		msg = gerr.Body
	}

	return &APIError{
		StatusCode: gerr.Code,
		ErrorClass: class,
		Reason:     reason,
		Message:    msg,
		Err:        err,
	}
}
