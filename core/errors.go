package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to one request field so the API can
// render it next to the offending input.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is the caller's-fault error class: the ledger sentinels and
// payload checks travel as Err, with optional per-field detail. The API error
// handler turns these into 400 responses instead of 500s.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// shutdown signals an integrity problem severe enough that the process should
// stop serving; the web server's error handler converts it into a graceful
// shutdown instead of a response.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
