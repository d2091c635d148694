package validate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vingd/srfax-go/internal/validate"
)

type job struct {
	To     []string `validate:"required,min=1,dive,faxnumber"`
	Sender string   `validate:"required,email"`
}

func TestDialString(t *testing.T) {
	testCases := []struct {
		name     string
		number   string
		expected string
	}{
		{name: "NANP", number: "+15551234567", expected: "15551234567"},
		{name: "Croatia", number: "+385123456789", expected: "011385123456789"},
		{name: "UK", number: "+442071234567", expected: "011442071234567"},
		{name: "Shortest", number: "+1234567", expected: "1234567"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := validate.DialString(tc.number)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestDialString_Invalid(t *testing.T) {
	for _, number := range []string{"", "15551234567", "+1-555-123-4567", "+123456", "+1234567890123456", "+1555abc4567"} {
		t.Run(number, func(t *testing.T) {
			_, err := validate.DialString(number)
			assert.True(t, errors.Is(err, validate.ErrNotE164), "expected ErrNotE164 for %q, got %v", number, err)
		})
	}
}

func TestDialStrings_KeepsOrder(t *testing.T) {
	got, err := validate.DialStrings([]string{"+15551234567", "+385123456789"})
	require.NoError(t, err)
	assert.Equal(t, []string{"15551234567", "011385123456789"}, got)

	_, err = validate.DialStrings([]string{"+15551234567", "bad"})
	assert.ErrorIs(t, err, validate.ErrNotE164)
}

func TestValidator_Struct(t *testing.T) {
	v := validate.New()

	assert.Empty(t, v.Struct(job{To: []string{"+15551234567"}, Sender: "fax@example.com"}))

	testCases := []struct {
		name  string
		input job
		field string
		tag   string
	}{
		{name: "NilDestinations", input: job{Sender: "fax@example.com"}, field: "To", tag: "required"},
		{name: "EmptyDestinations", input: job{To: []string{}, Sender: "fax@example.com"}, field: "To", tag: "min"},
		{name: "BadNumber", input: job{To: []string{"555"}, Sender: "fax@example.com"}, field: "To[0]", tag: validate.FaxNumberTag},
		{name: "BadEmail", input: job{To: []string{"+15551234567"}, Sender: "nope"}, field: "Sender", tag: "email"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			errs := v.Struct(tc.input)
			require.NotEmpty(t, errs)
			assert.Equal(t, tc.field, errs[0].Field)
			assert.Equal(t, tc.tag, errs[0].Tag)
		})
	}
}

func TestValidator_Var(t *testing.T) {
	v := validate.New()
	assert.NoError(t, v.Var("+15551234567", validate.FaxNumberTag))
	assert.Error(t, v.Var("5551234567", validate.FaxNumberTag))
}

func TestFieldError_String(t *testing.T) {
	assert.Equal(t, "To failed min=1", validate.FieldError{Field: "To", Tag: "min", Param: "1"}.String())
	assert.Equal(t, "Sender failed email", validate.FieldError{Field: "Sender", Tag: "email"}.String())
}
