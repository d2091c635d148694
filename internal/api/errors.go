package api

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned by New when the access ID or password is empty.
var ErrMissingCredentials = errors.New("access ID and password are required")

// RemoteError is returned when the service was reached and answered with a
// failure, or with a payload that does not match the operation's schema.
type RemoteError struct {
	Action    string
	Status    string
	Message   string
	RequestID string
	// Malformed is set when the envelope or Result could not be mapped
	// onto the expected schema.
	Malformed bool
}

func (e *RemoteError) Error() string {
	if e.Malformed {
		return fmt.Sprintf("%s: malformed response: %s", e.Action, e.Message)
	}
	if e.Status != "" {
		return fmt.Sprintf("%s: %s: %s", e.Action, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

// TransportError represents a failure to obtain a readable response.
type TransportError struct {
	Action     string
	RequestID  string
	StatusCode int // 0 if no HTTP response was received
	Timeout    bool
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: transport error (HTTP %d): %v", e.Action, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: transport error: %v", e.Action, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

func malformed(action, requestID, format string, args ...any) *RemoteError {
	return &RemoteError{
		Action:    action,
		RequestID: requestID,
		Message:   fmt.Sprintf(format, args...),
		Malformed: true,
	}
}

// IsMalformed reports whether err is a RemoteError caused by a malformed response.
func IsMalformed(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr) && remoteErr.Malformed
}
