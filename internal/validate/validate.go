// Package validate checks outbound fax requests before they reach the wire
// and converts E.164 numbers into the dialing strings the service expects.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// FaxNumberTag validates an E.164 number such as +15551234567.
	FaxNumberTag = "faxnumber"

	faxNumberRegex = `^\+\d{7,15}$`
	nanpPrefix     = "+1"
	intlPrefix     = "011"
)

var (
	faxNumberRe = regexp.MustCompile(faxNumberRegex)

	// ErrNotE164 is returned by DialString for numbers outside E.164.
	ErrNotE164 = errors.New("number not in E.164 format")
)

var custom = map[string]func(fl validator.FieldLevel) bool{
	FaxNumberTag: validateFaxNumber,
}

// FieldError describes one failed constraint.
type FieldError struct {
	Field string
	Tag   string
	Param string
	Value any
}

func (e FieldError) String() string {
	if e.Param != "" {
		return fmt.Sprintf("%s failed %s=%s", e.Field, e.Tag, e.Param)
	}
	return fmt.Sprintf("%s failed %s", e.Field, e.Tag)
}

// Validator wraps a configured validator.Validate. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the fax-specific tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	for tag, fn := range custom {
		// Registration only fails for empty tags or nil functions.
		_ = v.RegisterValidation(tag, fn)
	}
	return &Validator{validate: v}
}

// Struct validates s and returns the failed constraints in field order.
func (v *Validator) Struct(s any) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Tag: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		})
	}
	return out
}

// Var validates a single value against tag.
func (v *Validator) Var(field any, tag string) error {
	return v.validate.Var(field, tag)
}

func validateFaxNumber(fl validator.FieldLevel) bool {
	return IsE164(fl.Field().String())
}

// IsE164 reports whether number looks like an E.164 number.
func IsE164(number string) bool {
	return faxNumberRe.MatchString(number)
}

// DialString converts an E.164 number into the service's dialing format:
// North American numbers drop the '+', all others get the 011 exit code.
func DialString(number string) (string, error) {
	if !IsE164(number) {
		return "", fmt.Errorf("%w: %s", ErrNotE164, number)
	}
	if strings.HasPrefix(number, nanpPrefix) {
		return number[1:], nil
	}
	return intlPrefix + number[1:], nil
}

// DialStrings converts every number, failing on the first invalid one.
func DialStrings(numbers []string) ([]string, error) {
	out := make([]string, 0, len(numbers))
	for _, n := range numbers {
		d, err := DialString(n)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
