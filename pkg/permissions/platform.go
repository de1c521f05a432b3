package permissions

// Platform is the narrow surface of the OS permission frameworks.
//
// Implementations may invoke the callbacks passed to RequestAccess and
// SubscribeLocationChanges on any goroutine.
type Platform interface {
	// AuthorizationState returns the capability's current native state.
	// Both location capabilities report the same underlying state.
	AuthorizationState(c Capability) (NativeState, error)

	// RequestAccess prompts for a callback-delivery capability and invokes
	// done with the outcome.
	RequestAccess(c Capability, done func(NativeState)) error

	// RequestAuthorization prompts for a delegate-delivery capability. It
	// returns without an outcome; the new state arrives through the
	// location change subscription.
	RequestAuthorization(c Capability) error

	// SubscribeLocationChanges registers fn for location authorization changes.
	SubscribeLocationChanges(fn func(NativeState)) (unsubscribe func())

	// OpenSettings opens the app's page in the system settings. It returns
	// false when the OS cannot open settings.
	OpenSettings() (bool, error)
}
