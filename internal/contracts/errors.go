package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyVIXBand: zero classified strikes inside the VIX band, percentages undefined
	ErrEmptyVIXBand = errors.New("no classified strikes inside VIX band")

	// ErrSupportStateUnavailable matches every SupportStateError
	ErrSupportStateUnavailable = errors.New("support state unavailable")

	ErrNotFound = errors.New("not found")
)

// ConfigurationError is a misconfigured window or step. Fatal for the derivation.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

// SupportStateError wraps a failed support-state read or write
type SupportStateError struct {
	Op  string // "get" or "set"
	Key SupportKey
	Err error
}

func (e *SupportStateError) Error() string {
	return fmt.Sprintf("support state %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *SupportStateError) Unwrap() error {
	return e.Err
}

func (e *SupportStateError) Is(target error) bool {
	return target == ErrSupportStateUnavailable
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
