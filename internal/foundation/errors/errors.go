// Package errors classifies run-level failures so the CLI can choose an exit
// code and print a remedy without matching on error strings.
//
// Per-article failures never use this package; they are reported in the run
// summary and the run continues.
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "read failure log").
//		WithContext("path", path).
//		Build()
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory routes an error to an exit code.
type ErrorCategory string

const (
	// CategoryValidation is front matter that failed validate --ci.
	CategoryValidation ErrorCategory = "validation"
	// CategoryConfig is an unreadable or invalid configuration.
	CategoryConfig ErrorCategory = "config"
	// CategoryLocked means another run holds the state lock.
	CategoryLocked ErrorCategory = "locked"
	// CategoryNetwork is a failure talking to the platform or a webhook.
	CategoryNetwork ErrorCategory = "network"
	// CategoryGit is a history lookup failure.
	CategoryGit ErrorCategory = "git"
	// CategoryFileSystem is a state or article file failure.
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryInternal   ErrorCategory = "internal"
)

// ExitCode is the process exit status for the category.
func (c ErrorCategory) ExitCode() int {
	switch c {
	case CategoryConfig:
		return 2
	case CategoryLocked:
		return 3
	case CategoryNetwork, CategoryGit:
		return 8
	case CategoryInternal:
		return 10
	case CategoryFileSystem, CategoryNotFound:
		return 11
	default:
		return 1
	}
}

// ErrorSeverity selects the log level the CLI uses.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)

// ClassifiedError is an error with a category, a severity, optional
// structured context and an optional hint telling the operator what to do.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	hint     string
	cause    error
	context  map[string]any
}

func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.category, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.category, e.message)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity { return e.severity }
func (e *ClassifiedError) Message() string { return e.message }
func (e *ClassifiedError) Hint() string { return e.hint }
func (e *ClassifiedError) Cause() error { return e.cause }
func (e *ClassifiedError) Context() map[string]any { return e.context }
func (e *ClassifiedError) IsFatal() bool { return e.severity == SeverityFatal }

// AsClassified finds the first ClassifiedError in the chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory reports whether the first ClassifiedError in the chain has category.
func HasCategory(err error, category ErrorCategory) bool {
	classified, ok := AsClassified(err)
	return ok && classified.category == category
}

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error-severity error.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{category: category, severity: SeverityError, message: message}}
}

// WrapError starts an error wrapping cause.
func WrapError(cause error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(cause)
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	if b.err.context == nil {
		b.err.context = make(map[string]any)
	}
	b.err.context[key] = value
	return b
}

// WithHint sets the remedy printed under the error.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	b.err.severity = SeverityFatal
	return b
}

func (b *ErrorBuilder) Warning() *ErrorBuilder {
	b.err.severity = SeverityWarning
	return b
}

func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	return &e
}

// ValidationError reports front matter that failed a --ci run.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message)
}

// ConfigError reports an unusable configuration.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// LockedError reports that another run holds the state lock.
func LockedError(message string) *ErrorBuilder {
	return NewError(CategoryLocked, message).Fatal()
}

// FileSystemError reports a state or article file failure.
func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message)
}
