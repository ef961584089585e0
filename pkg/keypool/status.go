// Package keypool holds the ordered set of YouTube Data API keys and the
// cursor selecting the key used for the next request.
package keypool

import (
	"net/http"
)

// Status is the health of an API key as reported by the remote API.
type Status string

const (
	// StatusActive means the key answered a request successfully.
	StatusActive Status = "active"

	// StatusExhausted means the remote refused the key with 403 or 429:
	// daily quota spent, rate limited or access denied.
	StatusExhausted Status = "exhausted"

	// StatusInvalid means the remote rejected the key as malformed (400).
	StatusInvalid Status = "invalid"

	// StatusIndeterminate covers every other failure, including transport errors.
	StatusIndeterminate Status = "indeterminate"
)

// StatusForCode maps an HTTP status returned by the API to a key status.
// Success codes map to StatusActive.
func StatusForCode(code int) Status {
	switch {
	case code >= 200 && code < 300:
		return StatusActive
	case code == http.StatusForbidden, code == http.StatusTooManyRequests:
		return StatusExhausted
	case code == http.StatusBadRequest:
		return StatusInvalid
	default:
		return StatusIndeterminate
	}
}

// Rotatable reports whether a failure with this status is tied to the key
// itself, so switching to another key may succeed.
func (s Status) Rotatable() bool {
	return s == StatusExhausted || s == StatusInvalid
}

// Label returns the human-readable form printed by the quota probe.
func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusExhausted:
		return "Quota exhausted"
	case StatusInvalid:
		return "Invalid key"
	default:
		return "Unknown"
	}
}
