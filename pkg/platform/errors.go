package platform

import "errors"

// Sentinel errors for channel operations.
var (
	// ErrChannelNotFound indicates a method call arrived for an unregistered channel.
	ErrChannelNotFound = errors.New("platform channel not found")

	// ErrChannelNotRegistered is returned when an event arrives for an unregistered channel.
	ErrChannelNotRegistered = errors.New("event channel not registered")

	// ErrMethodNotFound indicates the method is not implemented on the receiving side.
	ErrMethodNotFound = errors.New("method not implemented")

	// ErrPlatformUnavailable indicates no native bridge is installed.
	ErrPlatformUnavailable = errors.New("platform feature unavailable")
)
