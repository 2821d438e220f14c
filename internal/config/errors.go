package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound is returned when the configuration file does not exist
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrMissingKey is wrapped by Error when a required setting is empty
	ErrMissingKey = errors.New("missing required configuration key")

	// ErrInvalidValue is wrapped by Error when a setting cannot be used
	ErrInvalidValue = errors.New("invalid configuration value")
)

// Error identifies the configuration key that could not be satisfied
type Error struct {
	Key    string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("config %s: %v: %s", e.Key, e.Err, e.Reason)
	}
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func missing(key string) error {
	return &Error{Key: key, Err: ErrMissingKey}
}

func invalid(key, reason string) error {
	return &Error{Key: key, Reason: reason, Err: ErrInvalidValue}
}
