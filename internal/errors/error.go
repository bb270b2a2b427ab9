package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryReactive  Category = "reactive"
	CategoryRender    Category = "render"
	CategoryScheduler Category = "scheduler"
	CategoryProtocol  Category = "protocol"
	CategoryConfig    Category = "config"
	CategoryStorage   Category = "storage"
	CategoryCLI       Category = "cli"
)

// RippleError is a structured error with a code, a category and an optional
// wrapped cause.
type RippleError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (reactive, render, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *RippleError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RippleError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a RippleError with the same code.
// A target without a code never matches.
func (e *RippleError) Is(target error) bool {
	t, ok := target.(*RippleError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *RippleError) WithSuggestion(s string) *RippleError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *RippleError) WithDetail(d string) *RippleError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *RippleError) Wrap(err error) *RippleError {
	e.Wrapped = err
	return e
}

// New creates a RippleError from a registered error code.
func New(code string) *RippleError {
	template, ok := registry[code]
	if !ok {
		return &RippleError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &RippleError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new RippleError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *RippleError {
	return &RippleError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a RippleError.
func FromError(err error, code string) *RippleError {
	if err == nil {
		return nil
	}
	var re *RippleError
	if stderrors.As(err, &re) {
		return re
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err (or anything it wraps) is a RippleError with code.
func HasCode(err error, code string) bool {
	var re *RippleError
	for err != nil {
		if !stderrors.As(err, &re) {
			return false
		}
		if re.Code == code {
			return true
		}
		err = re.Wrapped
	}
	return false
}
