// Package errs contains sentinel and typed errors used across layers for stable failure mapping.
package errs

import "errors"

// Common sentinels across transport/store layers.
var (
	// ErrUnauthorized indicates a protected request was rejected for a
	// missing or invalid token. Surfaced as a login redirect, not inline.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBusy indicates a re-entrant submit while an exchange is pending.
	ErrBusy = errors.New("operation already in flight")
)

// FallbackMessage is the generic notification text for failures that carry
// no server-provided message.
const FallbackMessage = "something went wrong, try again later"

// ValidationError reports locally rejected input. No network call was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Field + ": " + e.Reason
}

// LogicalError means the request completed but the backend reported failure
// in its response envelope.
type LogicalError struct {
	Message string // server-provided; may be empty
}

func (e *LogicalError) Error() string {
	if e.Message == "" {
		return "request failed"
	}
	return "request failed: " + e.Message
}

// TransportError means the request did not complete (network or server
// unreachable). Kept distinct from LogicalError for a future retry policy.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage converts an operation failure into notification text: the
// server message when present, the generic fallback otherwise.
func UserMessage(err error) string {
	var le *LogicalError
	if errors.As(err, &le) && le.Message != "" {
		return le.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return FallbackMessage
}
