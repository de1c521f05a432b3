package permissions

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-drift/permissions-helper/pkg/errors"
)

// RequestPermission asks the OS to authorize a logical permission and
// delivers the outcome to callback exactly once.
//
// Emulated and unsupported names, and native capabilities already in a
// terminal state, are answered synchronously without an OS request. A
// denied grant-table capability is the exception: it is asked for again.
// Callback-delivery capabilities are answered from the OS completion
// callback. Delegate-delivery capabilities (location) are answered when the
// OS posts its next authorization change; there is no timeout, and a second
// request for the same capability while one is pending replaces the first,
// whose callback is then never invoked.
func (s *Service) RequestPermission(name string, callback func(Status, error)) {
	deliver := deliverOnce(callback)

	e, err := s.lookup(name)
	if err != nil {
		deliver(StatusUndetermined, err)
		return
	}

	status, err := s.currentStatus(e)
	if err != nil {
		deliver(StatusUndetermined, err)
		return
	}
	if s.settled(e, status) {
		deliver(status, nil)
		return
	}

	switch e.Delivery {
	case DeliveryCallback:
		s.requestAccess(e, deliver)
	case DeliveryDelegate:
		s.requestAuthorization(e, deliver)
	default:
		deliver(StatusUndetermined, &errors.Error{
			Op:         "permissions.request",
			Kind:       errors.KindPermission,
			Permission: string(e.Name),
			Err:        fmt.Errorf("capability %s has no delivery form", e.Capability),
		})
	}
}

func (s *Service) settled(e Entry, status Status) bool {
	if status == StatusDenied && e.Tier == TierNative && s.catalog.reprompts(e.Capability) {
		return false
	}
	return status.Terminal()
}

func (s *Service) requestAccess(e Entry, deliver func(Status, error)) {
	err := s.platform.RequestAccess(e.Capability, func(state NativeState) {
		deliver(s.translate(e, state), nil)
	})
	if err != nil {
		deliver(StatusUndetermined, &errors.Error{
			Op:         "permissions.request",
			Kind:       errors.KindPlatform,
			Permission: string(e.Name),
			Err:        fmt.Errorf("request %s: %w", e.Capability, err),
		})
	}
}

// requestAuthorization registers the continuation before issuing the OS
// request so a notification posted during the call is not lost.
func (s *Service) requestAuthorization(e Entry, deliver func(Status, error)) {
	p := newPendingRequest(e.Name, deliver)
	if replaced := s.pending.put(e.Capability, p); replaced != nil {
		s.advise(Advisory{
			Kind:       AdviceOrphanedRequest,
			Name:       replaced.name,
			Capability: e.Capability,
			RequestID:  replaced.id,
		})
	}

	if err := s.platform.RequestAuthorization(e.Capability); err != nil {
		if s.pending.withdraw(e.Capability, p.id) {
			deliver(StatusUndetermined, &errors.Error{
				Op:         "permissions.request",
				Kind:       errors.KindPlatform,
				Permission: string(e.Name),
				Err:        fmt.Errorf("request %s: %w", e.Capability, err),
			})
		}
	}
}

// Request is the blocking form of RequestPermission. It waits for the
// outcome or for ctx to end. When ctx ends first, the current status is
// returned if it has become terminal; otherwise ErrTimeout or ErrCanceled.
// A pending OS request is not withdrawn when ctx ends.
func (s *Service) Request(ctx context.Context, name string) (Status, error) {
	type outcome struct {
		status Status
		err    error
	}
	resultChan := make(chan outcome, 1)
	s.RequestPermission(name, func(status Status, err error) {
		resultChan <- outcome{status, err}
	})

	select {
	case r := <-resultChan:
		return r.status, r.err
	case <-ctx.Done():
		select {
		case r := <-resultChan:
			return r.status, r.err
		default:
		}
		// Re-check status in case the notification went elsewhere
		if status, err := s.GetPermissionStatus(name); err == nil && status.Terminal() {
			return status, nil
		}
		if ctx.Err() == context.DeadlineExceeded {
			return StatusUndetermined, ErrTimeout
		}
		return StatusUndetermined, ErrCanceled
	}
}

func deliverOnce(callback func(Status, error)) func(Status, error) {
	var once sync.Once
	return func(status Status, err error) {
		once.Do(func() {
			if callback != nil {
				callback(status, err)
			}
		})
	}
}
