package errs

import (
	"errors"
	"fmt"
)

// Configuration & Environment Errors
var (
	ErrConfigMissing = errors.New("configuration missing")
	ErrConfigInvalid = errors.New("configuration invalid")
)

func NewConfigMissingError(key string) error {
	return fmt.Errorf("%w: %s is required", ErrConfigMissing, key)
}

func NewConfigInvalidError(key, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrConfigInvalid, key, reason)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigMissing) || errors.Is(err, ErrConfigInvalid)
}
