package permissions

import (
	"errors"
	"fmt"
)

// ErrorCode is the structured error code reported for unrecognized names.
const ErrorCode = "PERM_ERROR"

var (
	// ErrUnknownPermission matches any UnknownNameError via errors.Is.
	ErrUnknownPermission = errors.New("unknown permission")

	// ErrInvalidCatalog indicates a catalog document failed validation.
	ErrInvalidCatalog = errors.New("invalid permission catalog")

	// ErrTimeout indicates a blocking request's context deadline passed before
	// the OS reported an outcome.
	ErrTimeout = errors.New("permission request timed out")

	// ErrCanceled indicates a blocking request's context was canceled before
	// the OS reported an outcome.
	ErrCanceled = errors.New("permission request was canceled")
)

// UnknownNameError is returned for a logical name outside the catalog.
type UnknownNameError struct {
	Name string
}

func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("'%s' is not a recognized permission string.", e.Name)
}

// Code returns ErrorCode.
func (e *UnknownNameError) Code() string {
	return ErrorCode
}

func (e *UnknownNameError) Is(target error) bool {
	return target == ErrUnknownPermission
}
