package datasource

import (
	"fmt"
	"strings"

	"github.com/friendsofgo/errors"
)

// Sentinel causes carried by ValidationError, ConfigurationError and DriverError.
// Match them with errors.Is.
var (
	ErrInvalidValue          = errors.New("invalid value")
	ErrInvalidRange          = errors.New("range start is after range end")
	ErrUnsupportedComparison = errors.New("unsupported comparison")
	ErrUnknownFieldType      = errors.New("unknown field type")
	ErrUnknownDriver         = errors.New("unknown driver")
	ErrDuplicateField        = errors.New("field already registered")
	ErrDuplicateDriver       = errors.New("driver factory already registered")
	ErrUnknownField          = errors.New("unknown field")
	ErrInvalidName           = errors.New("invalid data source name")
	ErrInvalidOption         = errors.New("invalid option")
	ErrNotSortable           = errors.New("field is not sortable")
)

// ValidationError reports a single raw parameter that could not be bound.
// Field is the field name, or a reserved key such as "page" or "sort.title".
type ValidationError struct {
	Field string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %v for %q: %v", e.Value, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidationErrors is returned by BindParameters when one or more parameters
// failed to bind. Binding never stops at the first failure, so the list holds
// every rejected parameter in the order it was visited.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("%d parameter(s) failed validation: %s", len(e), strings.Join(msgs, "; "))
}

// Unwrap exposes every entry to errors.Is and errors.As.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, ve := range e {
		errs[i] = ve
	}
	return errs
}

// Fields returns the names of the rejected parameters.
func (e ValidationErrors) Fields() []string {
	names := make([]string, len(e))
	for i, ve := range e {
		names[i] = ve.Field
	}
	return names
}

// For returns the error recorded for the given field, or nil.
func (e ValidationErrors) For(field string) *ValidationError {
	for _, ve := range e {
		if ve.Field == field {
			return ve
		}
	}
	return nil
}

// ConfigurationError is a setup-time failure: unknown driver, unknown field
// type, duplicate registration or invalid options. It is not recoverable at
// request time.
type ConfigurationError struct {
	Subject string // "driver", "field", "field type", "data source", ...
	Name    string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Subject, e.Name, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DriverError wraps a backend rejection raised while executing a query.
type DriverError struct {
	Driver string
	Err    error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("driver %s: %v", e.Driver, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

// NewDriverError wraps err as a DriverError unless it already is one.
func NewDriverError(driver string, err error) error {
	if err == nil {
		return nil
	}
	var de *DriverError
	if errors.As(err, &de) {
		return err
	}
	return &DriverError{Driver: driver, Err: err}
}

func configErr(subject, name string, err error) error {
	return &ConfigurationError{Subject: subject, Name: name, Err: err}
}
