package permissions

import "fmt"

// Capability identifies the OS authorization domain a logical name is bound to.
type Capability string

// Capabilities of the built-in iOS catalog. Catalog documents may declare others.
const (
	CapabilityCamera            Capability = "camera"
	CapabilityPhotoLibrary      Capability = "photo_library"
	CapabilityContacts          Capability = "contacts"
	CapabilityMicrophone        Capability = "microphone"
	CapabilityLocationWhenInUse Capability = "location_when_in_use"
	CapabilityLocationAlways    Capability = "location_always"
)

// IsLocation reports whether c shares the OS location authorization state.
func (c Capability) IsLocation() bool {
	return c == CapabilityLocationAlways || c == CapabilityLocationWhenInUse
}

// Delivery describes how the OS reports the outcome of an authorization request.
type Delivery string

const (
	// DeliveryCallback capabilities report the outcome through a completion
	// callback passed to the request call.
	DeliveryCallback Delivery = "callback"
	// DeliveryDelegate capabilities return from the request immediately and
	// report the outcome later through a global authorization-change notification.
	DeliveryDelegate Delivery = "delegate"
)

// NativeState is the authorization state reported by an OS framework.
// Each capability only reports the subset listed in its translation table.
type NativeState string

const (
	NativeNotDetermined       NativeState = "not_determined"
	NativeRestricted          NativeState = "restricted"
	NativeDenied              NativeState = "denied"
	NativeAuthorized          NativeState = "authorized"
	NativeAuthorizedAlways    NativeState = "authorized_always"
	NativeAuthorizedWhenInUse NativeState = "authorized_when_in_use"
)

// ParseNativeState validates s as a native authorization state.
func ParseNativeState(s string) (NativeState, error) {
	switch st := NativeState(s); st {
	case NativeNotDetermined, NativeRestricted, NativeDenied, NativeAuthorized,
		NativeAuthorizedAlways, NativeAuthorizedWhenInUse:
		return st, nil
	}
	return "", fmt.Errorf("unknown native authorization state %q", s)
}

// NativeStateFromBool converts the boolean outcome some OS request APIs report.
func NativeStateFromBool(granted bool) NativeState {
	if granted {
		return NativeAuthorized
	}
	return NativeDenied
}
