// Package errors provides structured error reporting for the permissions helper.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindPlatform indicates a native bridge or OS framework failure.
	KindPlatform
	// KindParsing indicates a native result or event that could not be decoded.
	KindParsing
	// KindPermission indicates a permission name or catalog problem.
	KindPermission
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindParsing:
		return "parsing"
	case KindPermission:
		return "permission"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Error is a structured error raised while resolving or requesting a permission.
type Error struct {
	// Op is the operation that failed (e.g., "permissions.request").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Permission is the logical permission name involved, if any.
	Permission string
	// Channel is the platform channel name, if applicable.
	Channel string
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s [%s]", e.Op, e.Kind)
	if e.Permission != "" {
		msg += " permission=" + e.Permission
	}
	if e.Channel != "" {
		msg += " channel=" + e.Channel
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "permissions.locationChange").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a failure to decode native data.
type ParseError struct {
	// Source is the channel or capability the data came from.
	Source string
	// DataType is the expected type name.
	DataType string
	// Got is the actual data received.
	Got any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s from %s: got %T (%v)", e.DataType, e.Source, e.Got, e.Got)
}

// ErrorHandler receives errors reported by the permissions helper.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
