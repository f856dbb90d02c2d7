package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRender     Category = "render"
	CategoryManifest   Category = "manifest"
	CategoryServer     Category = "server"
	CategoryFilesystem Category = "filesystem"
	CategoryPublish    Category = "publish"
	CategoryConfig     Category = "config"
	CategoryCLI        Category = "cli"
)

// VangoError is a structured error with the route it concerns, suggestions,
// and documentation.
type VangoError struct {
	// Code is a unique error identifier (e.g., "E200").
	Code string

	// Category is the error type (render, filesystem, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Pathname is the route pathname or output path the error concerns.
	Pathname string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *VangoError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Pathname != "" {
		msg += " (" + e.Pathname + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *VangoError) Unwrap() error {
	return e.Wrapped
}

// WithPathname records the route pathname or output path.
func (e *VangoError) WithPathname(p string) *VangoError {
	e.Pathname = p
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *VangoError) WithSuggestion(s string) *VangoError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *VangoError) WithDetail(d string) *VangoError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *VangoError) Wrap(err error) *VangoError {
	e.Wrapped = err
	return e
}

// New creates a VangoError from a registered error code.
func New(code string) *VangoError {
	template, ok := registry[code]
	if !ok {
		return &VangoError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &VangoError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new VangoError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *VangoError {
	return &VangoError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a VangoError.
func FromError(err error, code string) *VangoError {
	if err == nil {
		return nil
	}
	var ve *VangoError
	if stderrors.As(err, &ve) {
		return ve
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is, or wraps, a VangoError with the given code.
func HasCode(err error, code string) bool {
	var ve *VangoError
	for err != nil {
		if !stderrors.As(err, &ve) {
			return false
		}
		if ve.Code == code {
			return true
		}
		err = ve.Wrapped
	}
	return false
}
