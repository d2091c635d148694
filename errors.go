package srfax

import (
	"errors"
	"fmt"

	"github.com/vingd/srfax-go/internal/api"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingAccessID is returned when no access ID is provided.
	ErrMissingAccessID = errors.New("access ID is required")

	// ErrMissingAccessPassword is returned when no access password is provided.
	ErrMissingAccessPassword = errors.New("access password is required")

	// ErrNotConfigured is returned by operations on a Client not built with New.
	ErrNotConfigured = errors.New("client is not configured")

	// ErrNoDestination is returned when a fax has no destination number.
	ErrNoDestination = errors.New("at least one destination fax number is required")

	// ErrInvalidNumber is returned when a destination is not in E.164 format.
	ErrInvalidNumber = errors.New("fax number not in E.164 format")

	// ErrInvalidDocument is returned when a document is missing, unreadable or empty.
	ErrInvalidDocument = errors.New("invalid fax document")

	// ErrMissingSender is returned when neither the call nor the client
	// supplies a caller ID and sender email.
	ErrMissingSender = errors.New("caller ID and sender email are required")

	// ErrInvalidDateRange is returned when a date range is open on one side
	// or starts after it ends.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidFaxID is returned when a fax id list is empty, too long, or
	// holds an empty id.
	ErrInvalidFaxID = errors.New("invalid fax id")

	// ErrInvalidArgument is returned for other malformed arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTimeout is returned when the request timeout or context deadline expires.
	ErrTimeout = errors.New("request timed out")

	// ErrMalformedResponse is returned when the service's reply does not
	// match the operation's schema.
	ErrMalformedResponse = errors.New("malformed response")
)

// Error is implemented by all errors returned from this package.
type Error interface {
	error
	FaxError() // marker method
}

// ConfigurationError reports an invalid client setup. It is detected before
// any network call.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

// Unwrap returns the matching sentinel.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// FaxError implements the Error interface.
func (e *ConfigurationError) FaxError() {}

// ValidationError reports a malformed argument. The service is never
// contacted when one is returned.
type ValidationError struct {
	Field   string
	Message string
	Err     error // sentinel classifying the failure
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Unwrap returns the matching sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FaxError implements the Error interface.
func (e *ValidationError) FaxError() {}

// TransportError reports that no usable response was received: DNS or
// connection failures, timeouts, HTTP error pages, bodies that are not JSON.
type TransportError struct {
	Action     string
	RequestID  string
	StatusCode int // 0 if no HTTP response was received
	Err        error
	timeout    bool
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: %s (HTTP %d): %v", e.Action, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error: %s: %v", e.Action, e.Err)
}

// Unwrap returns the underlying transport failure.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout.
func (e *TransportError) Timeout() bool {
	return e.timeout
}

// Is implements errors.Is for sentinel error matching.
func (e *TransportError) Is(target error) bool {
	return target == ErrTimeout && e.timeout
}

// FaxError implements the Error interface.
func (e *TransportError) FaxError() {}

// RemoteError reports that the service was reached and refused the call.
// Message is the service's text, unmodified.
type RemoteError struct {
	Action    string
	Status    string
	Message   string
	RequestID string
	malformed bool
}

func (e *RemoteError) Error() string {
	if e.malformed {
		return fmt.Sprintf("srfax %s: malformed response: %s", e.Action, e.Message)
	}
	return fmt.Sprintf("srfax %s: %s", e.Action, e.Message)
}

// Malformed reports whether the error stems from a reply that did not
// match the expected schema rather than an explicit refusal.
func (e *RemoteError) Malformed() bool {
	return e.malformed
}

// Is implements errors.Is for sentinel error matching.
func (e *RemoteError) Is(target error) bool {
	return target == ErrMalformedResponse && e.malformed
}

// FaxError implements the Error interface.
func (e *RemoteError) FaxError() {}

func validationError(field string, sentinel error, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}

// wrapError converts internal API errors to public errors.
// This ensures that errors.Is() checks work with public sentinel errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var remoteErr *api.RemoteError
	if errors.As(err, &remoteErr) {
		return &RemoteError{
			Action:    remoteErr.Action,
			Status:    remoteErr.Status,
			Message:   remoteErr.Message,
			RequestID: remoteErr.RequestID,
			malformed: remoteErr.Malformed,
		}
	}

	var transportErr *api.TransportError
	if errors.As(err, &transportErr) {
		return &TransportError{
			Action:     transportErr.Action,
			RequestID:  transportErr.RequestID,
			StatusCode: transportErr.StatusCode,
			Err:        transportErr.Err,
			timeout:    transportErr.Timeout,
		}
	}

	return err
}
