// Package errors provides the error taxonomy of the host boundary.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	"fmt"

	"github.com/reglet-dev/lambda-bridge/domain/entities"
)

// DiagnosticError is an error that can produce its full diagnostic text.
// This is the only capability the boundary requires of a failure.
type DiagnosticError interface {
	error
	Diagnostic() string
}

// Wrap boxes any error into a DiagnosticError. Errors that already are one
// are returned unchanged. Wrap(nil) returns nil.
func Wrap(err error) DiagnosticError {
	if err == nil {
		return nil
	}
	if de, ok := err.(DiagnosticError); ok {
		return de
	}
	return &boxedError{err: err}
}

// boxedError adapts a plain error to DiagnosticError.
type boxedError struct {
	err error
}

func (e *boxedError) Error() string {
	return errorText(e.err)
}

func (e *boxedError) Diagnostic() string {
	return errorText(e.err)
}

func (e *boxedError) Unwrap() error {
	return e.err
}

// errorText returns err.Error(). When Error panics, for example on a nil
// pointer receiver, it falls back to fmt's rendering of err.
func errorText(err error) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = fmt.Sprintf("%v", err)
		}
	}()
	return err.Error()
}

// DiagnosticText returns the full diagnostic text of err, preferring its own
// Diagnostic method. It never panics.
func DiagnosticText(err error) (text string) {
	if err == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			text = errorText(err)
		}
	}()
	return Wrap(err).Diagnostic()
}

// Conversion directions.
const (
	DirectionDecode = "decode"
	DirectionEncode = "encode"
)

// ConversionError represents a value that could not cross the boundary in
// either direction.
type ConversionError struct {
	Direction string // DirectionDecode or DirectionEncode
	Path      string // JSONPath-like location of the offending value, "$" for the root
	Reason    string
}

func (e *ConversionError) Error() string {
	path := e.Path
	if path == "" {
		path = "$"
	}
	return fmt.Sprintf("cannot %s value at %s: %s", e.Direction, path, e.Reason)
}

// Diagnostic implements DiagnosticError.
func (e *ConversionError) Diagnostic() string {
	return e.Error()
}

// ContextAttributeError represents a context attribute that was missing or
// not a string when the context view was constructed.
type ContextAttributeError struct {
	Err       error
	Attribute string
}

func (e *ContextAttributeError) Error() string {
	return fmt.Sprintf("failed to extract context attribute %s: %v", e.Attribute, e.Err)
}

func (e *ContextAttributeError) Unwrap() error {
	return e.Err
}

// Diagnostic implements DiagnosticError.
func (e *ContextAttributeError) Diagnostic() string {
	return e.Error()
}

// GetRemainingTimeError is returned when the remaining time query fails for
// any reason. The cause is deliberately not exposed.
type GetRemainingTimeError struct{}

func (e *GetRemainingTimeError) Error() string {
	return "failed to call " + entities.MethodGetRemainingTimeInMillis
}

// Diagnostic implements DiagnosticError.
func (e *GetRemainingTimeError) Diagnostic() string {
	return e.Error()
}

// Is makes every GetRemainingTimeError match ErrGetRemainingTime.
func (e *GetRemainingTimeError) Is(target error) bool {
	_, ok := target.(*GetRemainingTimeError)
	return ok
}

// ErrGetRemainingTime is a sentinel usable with errors.Is.
var ErrGetRemainingTime error = &GetRemainingTimeError{}

// HandlerError wraps an error returned by user code. Its text is the text of
// the wrapped error, unchanged.
type HandlerError struct {
	Err error
}

func (e *HandlerError) Error() string {
	if e.Err == nil {
		return "handler failed"
	}
	return errorText(e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Diagnostic implements DiagnosticError, preferring the wrapped error's own
// diagnostic text.
func (e *HandlerError) Diagnostic() string {
	if e.Err == nil {
		return e.Error()
	}
	return DiagnosticText(e.Err)
}

// PanicError represents a panic recovered from user code.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// Diagnostic implements DiagnosticError.
func (e *PanicError) Diagnostic() string {
	return e.Error()
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// EventError represents an event field that is missing, mistyped or fails
// validation.
type EventError struct {
	Err   error
	Field string
}

func (e *EventError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid event: %v", e.Err)
	}
	return fmt.Sprintf("invalid event field %s: %v", e.Field, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}
