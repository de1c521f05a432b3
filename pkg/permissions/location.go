package permissions

import "github.com/go-drift/permissions-helper/pkg/errors"

// HandleLocationAuthorizationChange resolves a pending location request from
// an OS authorization-change notification. It is safe to call from any
// goroutine.
//
// The always request is checked before the when-in-use request, and at most
// one is resolved per notification. NativeNotDetermined is transitional and
// leaves pending requests in place.
func (s *Service) HandleLocationAuthorizationChange(state NativeState) {
	if state == NativeNotDetermined {
		return
	}
	c, p, ok := s.pending.takeFirst(CapabilityLocationAlways, CapabilityLocationWhenInUse)
	if !ok {
		return
	}

	defer errors.Recover("permissions.locationChange")
	p.deliver(locationOutcome(c, state), nil)
}

// locationOutcome decides whether a notification satisfies the pending
// request: always needs background authorization, when-in-use accepts either.
func locationOutcome(c Capability, state NativeState) Status {
	switch c {
	case CapabilityLocationAlways:
		if state == NativeAuthorizedAlways {
			return StatusGranted
		}
	case CapabilityLocationWhenInUse:
		if state == NativeAuthorizedAlways || state == NativeAuthorizedWhenInUse {
			return StatusGranted
		}
	}
	return StatusDenied
}
