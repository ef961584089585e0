package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrPoolExhausted is returned when every key was tried for one call
	// and each failed with a key-related status.
	ErrPoolExhausted = errors.New("all API keys exhausted")

	// ErrNotRetryable is returned when a call failed for a reason that
	// switching keys cannot fix.
	ErrNotRetryable = errors.New("request failed")

	// ErrChannelNotFound is returned when a channel reference resolves to nothing.
	ErrChannelNotFound = errors.New("channel not found")
)

// APIError describes one failed attempt against the YouTube Data API.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Reason     string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if e.Reason != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Reason)
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("YouTube %s error: %s", e.ErrorClass, msg)
	}
	return fmt.Sprintf("YouTube %s error (status %d): %s", e.ErrorClass, e.StatusCode, msg)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// shouldRotate determines if a failure should move the pool to the next key.
func shouldRotate(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassCredential:
		// 400/403/429 are tied to the key: another key may succeed
		return true
	case ErrorClassRequest:
		// malformed query or server fault: same answer with any key
		return false
	case ErrorClassTransport:
		return false
	default:
		return false
	}
}
