// Package simulator implements permissions.Platform over a device described
// in permhelper.yaml, so the permission service can run without a native
// bridge.
package simulator

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/go-drift/permissions-helper/cmd/permhelper/internal/config"
	"github.com/go-drift/permissions-helper/pkg/permissions"
)

// Simulator is a simulated OS permission framework.
//
// Callback capabilities answer prompts synchronously from device.prompts.
// Location prompts return at once and post the configured answer as an
// authorization-change notification on another goroutine, the way the OS
// delegate does; without a configured answer no notification is posted.
type Simulator struct {
	logger *logrus.Logger
	check  func(*config.Config) error

	mu        sync.Mutex
	device    config.Device
	listeners map[int]func(permissions.NativeState)
	nextID    int
	pending   sync.WaitGroup
}

// New creates a Simulator for device.
func New(device config.Device, logger *logrus.Logger) *Simulator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Simulator{
		logger:    logger,
		device:    cloneDevice(device),
		listeners: map[int]func(permissions.NativeState){},
	}
}

// CheckWith sets an extra check a reloaded device file must pass.
func (s *Simulator) CheckWith(check func(*config.Config) error) {
	s.check = check
}

// AuthorizationState implements permissions.Platform. Capabilities without a
// configured state are not determined.
func (s *Simulator) AuthorizationState(c permissions.Capability) (permissions.NativeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(c), nil
}

// RequestAccess implements permissions.Platform. Without a configured
// answer the simulated user denies.
func (s *Simulator) RequestAccess(c permissions.Capability, done func(permissions.NativeState)) error {
	s.mu.Lock()
	answer := permissions.NativeDenied
	if raw, ok := s.device.Prompts[config.StateKey(c)]; ok {
		answer = permissions.NativeState(raw)
	}
	s.device.States[config.StateKey(c)] = string(answer)
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{"capability": c, "answer": answer}).Debug("prompt answered")
	done(answer)
	return nil
}

// RequestAuthorization implements permissions.Platform.
func (s *Simulator) RequestAuthorization(c permissions.Capability) error {
	s.mu.Lock()
	raw, ok := s.device.Prompts[config.StateKey(c)]
	if ok {
		s.device.States[config.StateKey(c)] = raw
		s.pending.Add(1)
	}
	s.mu.Unlock()

	if !ok {
		s.logger.WithField("capability", c).Debug("prompt left unanswered")
		return nil
	}
	go func() {
		defer s.pending.Done()
		s.notify(permissions.NativeState(raw))
	}()
	return nil
}

// SubscribeLocationChanges implements permissions.Platform.
func (s *Simulator) SubscribeLocationChanges(fn func(permissions.NativeState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// OpenSettings implements permissions.Platform.
func (s *Simulator) OpenSettings() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device.SettingsOpen(), nil
}

// Update replaces the simulated device. A change of the location state is
// posted to location subscribers.
func (s *Simulator) Update(device config.Device) {
	s.mu.Lock()
	before := s.stateLocked(permissions.CapabilityLocationAlways)
	s.device = cloneDevice(device)
	after := s.stateLocked(permissions.CapabilityLocationAlways)
	s.mu.Unlock()

	if before != after {
		s.notify(after)
	}
}

// Wait blocks until every posted location notification has been delivered.
func (s *Simulator) Wait() {
	s.pending.Wait()
}

func (s *Simulator) stateLocked(c permissions.Capability) permissions.NativeState {
	if raw, ok := s.device.States[config.StateKey(c)]; ok {
		return permissions.NativeState(raw)
	}
	return permissions.NativeNotDetermined
}

func (s *Simulator) notify(state permissions.NativeState) {
	s.mu.Lock()
	fns := make([]func(permissions.NativeState), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	s.logger.WithField("state", state).Debug("location authorization changed")
	for _, fn := range fns {
		fn(state)
	}
}

func cloneDevice(d config.Device) config.Device {
	out := d
	out.States = make(map[string]string, len(d.States))
	for k, v := range d.States {
		out.States[k] = v
	}
	out.Prompts = make(map[string]string, len(d.Prompts))
	for k, v := range d.Prompts {
		out.Prompts[k] = v
	}
	return out
}
