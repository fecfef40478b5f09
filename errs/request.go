package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrMalformedPayload = errors.New("malformed payload")

// NewValidationError carries per-field messages back to the form that produced them.
func NewValidationError(entity string, fields map[string]string) *Error {
	e := newError(KindValidation, entity, "validation failed")
	e.Fields = fields
	if len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		e.Field = names[0]
		e.Details = strings.Join(names, ", ")
	}
	return e
}

func NewMalformedPayloadError(payloadType string, cause error) *Error {
	return &Error{
		Kind:    KindValidation,
		err:     ErrMalformedPayload,
		Details: fmt.Sprintf("Malformed %s payload", payloadType),
		Field:   "payload",
		Cause:   cause,
	}
}
