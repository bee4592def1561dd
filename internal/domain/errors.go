package domain

import (
	"errors"
	"strings"
)

// ConfigurationError is the only fatal error class: the run would be meaningless.
// Hints carry remediation steps for the user.
type ConfigurationError struct {
	Op    string
	Err   error
	Hints []string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Op != "" {
		b.WriteString(" (")
		b.WriteString(e.Op)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError wraps err with remediation hints.
func NewConfigurationError(op string, err error, hints ...string) *ConfigurationError {
	return &ConfigurationError{Op: op, Err: err, Hints: hints}
}

// AsConfigurationError extracts a ConfigurationError from an error chain.
func AsConfigurationError(err error) (*ConfigurationError, bool) {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr, true
	}
	return nil, false
}
