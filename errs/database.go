package errs

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrDatabaseConnection = errors.New("database connection failed")
	ErrTransactionFailed  = errors.New("transaction failed")
)

// NewDatabaseError classifies a driver or gorm error into a Kind. Constraint
// violations are the backstop for the stores' own pre-checks, so a violation that
// slips past a pre-check still reaches the controller as the right kind.
func NewDatabaseError(operation, entity string, cause error) error {
	if cause == nil {
		return nil
	}

	var domainErr *Error
	if errors.As(cause, &domainErr) {
		return domainErr
	}

	details := fmt.Sprintf("Failed to %s %s", operation, entity)
	errStr := strings.ToLower(cause.Error())

	switch {
	case errors.Is(cause, gorm.ErrRecordNotFound) || strings.Contains(errStr, "record not found"):
		e := NewNotFound(entity)
		e.Cause = cause
		return e
	case errors.Is(cause, gorm.ErrDuplicatedKey) ||
		strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "unique constraint"):
		var e *Error
		if entity == "user" {
			e = NewEmailExists("")
		} else {
			e = NewNameExists(entity, "")
		}
		e.Details = details
		e.Cause = cause
		return e
	case errors.Is(cause, gorm.ErrForeignKeyViolated) || strings.Contains(errStr, "foreign key constraint"):
		var e *Error
		if strings.HasPrefix(operation, "delete") {
			e = NewInUse(entity)
		} else {
			e = NewNotFound(entity)
			details = "The referenced resource does not exist or cannot be linked"
		}
		e.Details = details
		e.Cause = cause
		return e
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "failed to connect"):
		return &Error{Kind: KindInternal, Entity: entity, err: ErrDatabaseConnection, Details: "Unable to connect to database", Cause: cause}
	}

	// Generic database error
	return &Error{Kind: KindInternal, Entity: entity, err: ErrDatabaseQuery, Details: details, Cause: cause}
}

// NewTransactionFailedError wraps an unclassified failure inside a transaction.
func NewTransactionFailedError(operation string, cause error) error {
	var domainErr *Error
	if errors.As(cause, &domainErr) {
		return domainErr
	}
	return &Error{
		Kind:    KindInternal,
		err:     ErrTransactionFailed,
		Details: fmt.Sprintf("Transaction failed during %s", operation),
		Cause:   cause,
	}
}
