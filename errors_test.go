package srfax

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vingd/srfax-go/internal/api"
)

func TestSentinelErrors(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrMissingAccessID", ErrMissingAccessID},
		{"ErrMissingAccessPassword", ErrMissingAccessPassword},
		{"ErrNotConfigured", ErrNotConfigured},
		{"ErrNoDestination", ErrNoDestination},
		{"ErrInvalidNumber", ErrInvalidNumber},
		{"ErrInvalidDocument", ErrInvalidDocument},
		{"ErrMissingSender", ErrMissingSender},
		{"ErrInvalidDateRange", ErrInvalidDateRange},
		{"ErrInvalidFaxID", ErrInvalidFaxID},
		{"ErrInvalidArgument", ErrInvalidArgument},
		{"ErrTimeout", ErrTimeout},
		{"ErrMalformedResponse", ErrMalformedResponse},
	}

	for _, s := range sentinels {
		t.Run(s.name, func(t *testing.T) {
			if s.err == nil {
				t.Fatal("sentinel error is nil")
			}
			if s.err.Error() == "" {
				t.Error("sentinel error has empty message")
			}
		})
	}
}

func TestErrorKinds_ImplementError(t *testing.T) {
	var _ Error = (*ConfigurationError)(nil)
	var _ Error = (*ValidationError)(nil)
	var _ Error = (*TransportError)(nil)
	var _ Error = (*RemoteError)(nil)
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		expected string
	}{
		{
			name:     "with field",
			err:      &ValidationError{Field: "to", Message: "no destination fax number", Err: ErrNoDestination},
			expected: "validation failed: to: no destination fax number",
		},
		{
			name:     "without field",
			err:      &ValidationError{Message: "bad input"},
			expected: "validation failed: bad input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	err := validationError("start", ErrInvalidDateRange, "start %s is after end %s", "2024-02-01", "2024-01-01")

	assert.ErrorIs(t, err, ErrInvalidDateRange)
	assert.NotErrorIs(t, err, ErrNoDestination)
	assert.Equal(t, "validation failed: start: start 2024-02-01 is after end 2024-01-01", err.Error())
}

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{Field: "accessID", Err: ErrMissingAccessID}

	assert.Equal(t, "configuration error: accessID: access ID is required", err.Error())
	assert.ErrorIs(t, err, ErrMissingAccessID)
}

func TestTransportError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *TransportError
		expected string
	}{
		{
			name:     "with status code",
			err:      &TransportError{Action: "Queue_Fax", StatusCode: 502, Err: errors.New("bad gateway")},
			expected: "transport error: Queue_Fax (HTTP 502): bad gateway",
		},
		{
			name:     "without status code",
			err:      &TransportError{Action: "Get_FaxStatus", Err: errors.New("connection refused")},
			expected: "transport error: Get_FaxStatus: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestTransportError_Is(t *testing.T) {
	timeout := &TransportError{Action: "Queue_Fax", Err: context.DeadlineExceeded, timeout: true}
	reset := &TransportError{Action: "Queue_Fax", Err: errors.New("connection reset by peer")}

	assert.ErrorIs(t, timeout, ErrTimeout)
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)
	assert.NotErrorIs(t, reset, ErrTimeout)
	assert.NotErrorIs(t, timeout, ErrMalformedResponse)
}

func TestRemoteError_Error(t *testing.T) {
	refused := &RemoteError{Action: "Queue_Fax", Status: "Failed", Message: "Invalid Access Code / Password"}
	bad := &RemoteError{Action: "Get_FaxStatus", Status: "Success", Message: "SentStatus missing", malformed: true}

	assert.Equal(t, "srfax Queue_Fax: Invalid Access Code / Password", refused.Error())
	assert.Equal(t, "srfax Get_FaxStatus: malformed response: SentStatus missing", bad.Error())

	assert.NotErrorIs(t, refused, ErrMalformedResponse)
	assert.ErrorIs(t, bad, ErrMalformedResponse)
}

func TestWrapError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, wrapError(nil))
	})

	t.Run("remote", func(t *testing.T) {
		in := &api.RemoteError{Action: "Delete_Fax", Status: "Failed", Message: "Fax not found", RequestID: "req-1"}
		var out *RemoteError
		assert.ErrorAs(t, wrapError(fmt.Errorf("wrapped: %w", in)), &out)
		assert.Equal(t, "Fax not found", out.Message)
		assert.Equal(t, "req-1", out.RequestID)
		assert.False(t, out.Malformed())
	})

	t.Run("malformed", func(t *testing.T) {
		in := &api.RemoteError{Action: "Queue_Fax", Message: "empty fax id", Malformed: true}
		assert.ErrorIs(t, wrapError(in), ErrMalformedResponse)
	})

	t.Run("transport timeout", func(t *testing.T) {
		in := &api.TransportError{Action: "Queue_Fax", Timeout: true, Err: context.DeadlineExceeded}
		err := wrapError(in)
		var out *TransportError
		assert.ErrorAs(t, err, &out)
		assert.True(t, out.Timeout())
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("other", func(t *testing.T) {
		in := errors.New("something else")
		assert.Equal(t, in, wrapError(in))
	})
}
