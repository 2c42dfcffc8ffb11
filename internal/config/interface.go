package config

import (
	"fmt"

	"codeberg.org/mutker/lhmoled/internal/errors"
)

// Option defines a configuration option that can be passed to Load
type Option func(*options) error

type options struct {
	configPath string
	envPrefix  string
	args       []string
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configPath = path
		return nil
	}
}

// WithEnvPrefix specifies a custom environment variable prefix
// Default is "LHMOLED"
func WithEnvPrefix(prefix string) Option {
	return func(o *options) error {
		if prefix == "" {
			return fmt.Errorf("empty environment prefix")
		}
		o.envPrefix = prefix
		return nil
	}
}

// WithArgs replaces the command line arguments parsed for flags.
func WithArgs(args []string) Option {
	return func(o *options) error {
		o.args = args
		return nil
	}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

// ValidationError represents a configuration validation error
type ValidationError interface {
	errors.Error
	// Field returns the name of the invalid field
	Field() string
	// Value returns the invalid value
	Value() interface{}
	// Reason returns why the value is invalid
	Reason() string
}

type validationError struct {
	err    errors.Error
	field  string
	value  interface{}
	reason string
}

func newValidationError(code errors.ErrorCode, field string, value interface{}, reason string) ValidationError {
	return &validationError{
		err:    errors.New().WithMessage(code, fmt.Sprintf("%s %s (got %v)", field, reason, value)),
		field:  field,
		value:  value,
		reason: reason,
	}
}

func (e *validationError) Error() string                      { return e.err.Error() }
func (e *validationError) Code() errors.ErrorCode             { return e.err.Code() }
func (e *validationError) WithMessage(msg string) errors.Error { return e.err.WithMessage(msg) }
func (e *validationError) WithData(data any) errors.Error      { return e.err.WithData(data) }
func (e *validationError) GetData() any                       { return e.value }
func (e *validationError) Unwrap() error                      { return nil }
func (e *validationError) Field() string                      { return e.field }
func (e *validationError) Value() interface{}                 { return e.value }
func (e *validationError) Reason() string                     { return e.reason }
