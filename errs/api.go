package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of outcomes the controllers dispatch on.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindNameExists
	KindEmailExists
	KindInUse
	KindForbidden
	KindInvalidCredentials
	KindValidation
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindNameExists:
		return "name_exists"
	case KindEmailExists:
		return "email_exists"
	case KindInUse:
		return "in_use"
	case KindForbidden:
		return "forbidden"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// HTTPStatus is used when a failure has to be written as a status code instead of a redirect.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindNameExists, KindEmailExists, KindInUse:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is. Any *Error matches the sentinel of its kind.
var (
	ErrInternal           = &Error{Kind: KindInternal, err: errors.New("internal server error")}
	ErrNotFound           = &Error{Kind: KindNotFound, err: errors.New("not found")}
	ErrNameExists         = &Error{Kind: KindNameExists, err: errors.New("name already exists")}
	ErrEmailExists        = &Error{Kind: KindEmailExists, err: errors.New("email already exists")}
	ErrInUse              = &Error{Kind: KindInUse, err: errors.New("in use")}
	ErrForbidden          = &Error{Kind: KindForbidden, err: errors.New("operation not allowed")}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, err: errors.New("invalid credentials")}
	ErrValidation         = &Error{Kind: KindValidation, err: errors.New("validation failed")}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized, err: errors.New("unauthorized")}
)

type Error struct {
	Kind    Kind
	err     error
	Entity  string            // entity the failure concerns, e.g. "status"
	Field   string            // form field that caused the error
	Details string            // additional details about the error
	Fields  map[string]string // per-field validation messages
	Cause   error             // the underlying cause of the error
}

func newError(kind Kind, entity, message string) *Error {
	return &Error{Kind: kind, Entity: entity, err: errors.New(message)}
}

// implements error interface. this allows us to pass an instance of Error as an argument of type `error`
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.err.Error(), e.Details)
	}
	return e.err.Error()
}

// GetFullError returns a recursive error message including all causes
func (e *Error) GetFullError() string {
	msg := e.Error()
	if e.Cause != nil {
		var inner *Error
		if errors.As(e.Cause, &inner) {
			msg = fmt.Sprintf("%s -> %s", msg, inner.GetFullError())
		} else {
			msg = fmt.Sprintf("%s -> %s", msg, e.Cause.Error())
		}
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, errs.ErrNotFound) works
// regardless of entity or message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf classifies an error. Errors outside this package are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func NewNotFound(entity string) *Error {
	return newError(KindNotFound, entity, entity+" not found")
}

func NewNameExists(entity, name string) *Error {
	e := newError(KindNameExists, entity, entity+" name already exists")
	e.Field = "name"
	e.Details = name
	return e
}

func NewEmailExists(email string) *Error {
	e := newError(KindEmailExists, "user", "email already exists")
	e.Field = "email"
	e.Details = email
	return e
}

func NewInUse(entity string) *Error {
	return newError(KindInUse, entity, entity+" is in use")
}

func NewForbidden(entity string) *Error {
	return newError(KindForbidden, entity, "operation not allowed")
}

func NewInvalidCredentials() *Error {
	return newError(KindInvalidCredentials, "user", "invalid credentials")
}

func NewUnauthorized() *Error {
	return newError(KindUnauthorized, "", "unauthorized")
}

func NewInternalErrorWithCause(message string, cause error) *Error {
	e := newError(KindInternal, "", message)
	e.Cause = cause
	return e
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsNameExists(err error) bool {
	return errors.Is(err, ErrNameExists)
}

func IsEmailExists(err error) bool {
	return errors.Is(err, ErrEmailExists)
}

func IsInUse(err error) bool {
	return errors.Is(err, ErrInUse)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
