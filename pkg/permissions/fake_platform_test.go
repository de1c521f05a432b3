package permissions

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakePlatform is an in-memory Platform. Location capabilities share one state.
type fakePlatform struct {
	mu sync.Mutex

	states   map[Capability]NativeState
	location NativeState

	// answers are what the simulated user picks in a RequestAccess prompt.
	answers        map[Capability]NativeState
	doubleCallback bool

	queryErr   error
	requestErr error

	settingsOK    bool
	settingsErr   error
	settingsCalls int

	accessCalls []Capability
	authCalls   []Capability
	listeners   map[int]func(NativeState)
	nextID      int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		states:     map[Capability]NativeState{},
		location:   NativeNotDetermined,
		answers:    map[Capability]NativeState{},
		settingsOK: true,
		listeners:  map[int]func(NativeState){},
	}
}

func (f *fakePlatform) AuthorizationState(c Capability) (NativeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return "", f.queryErr
	}
	if c.IsLocation() {
		return f.location, nil
	}
	if st, ok := f.states[c]; ok {
		return st, nil
	}
	return NativeNotDetermined, nil
}

func (f *fakePlatform) RequestAccess(c Capability, done func(NativeState)) error {
	f.mu.Lock()
	f.accessCalls = append(f.accessCalls, c)
	if f.requestErr != nil {
		f.mu.Unlock()
		return f.requestErr
	}
	answer, ok := f.answers[c]
	if !ok {
		answer = NativeDenied
	}
	f.states[c] = answer
	twice := f.doubleCallback
	f.mu.Unlock()

	done(answer)
	if twice {
		done(NativeDenied)
	}
	return nil
}

func (f *fakePlatform) RequestAuthorization(c Capability) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls = append(f.authCalls, c)
	return f.requestErr
}

func (f *fakePlatform) SubscribeLocationChanges(fn func(NativeState)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *fakePlatform) OpenSettings() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settingsCalls++
	return f.settingsOK, f.settingsErr
}

func (f *fakePlatform) setState(c Capability, st NativeState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.IsLocation() {
		f.location = st
		return
	}
	f.states[c] = st
}

// emitLocation changes the location state and notifies subscribers.
func (f *fakePlatform) emitLocation(st NativeState) {
	f.mu.Lock()
	f.location = st
	fns := make([]func(NativeState), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

func (f *fakePlatform) osCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accessCalls) + len(f.authCalls)
}

// recordingDiagnostics collects advisories.
type recordingDiagnostics struct {
	mu         sync.Mutex
	advisories []Advisory
}

func (r *recordingDiagnostics) Advise(a Advisory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advisories = append(r.advisories, a)
}

func (r *recordingDiagnostics) kinds() []AdvisoryKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]AdvisoryKind, len(r.advisories))
	for i, a := range r.advisories {
		kinds[i] = a.Kind
	}
	return kinds
}

func (r *recordingDiagnostics) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advisories = nil
}

// newTestService builds a Service over the built-in catalog for a current OS.
func newTestService(t *testing.T) (*Service, *fakePlatform, *recordingDiagnostics) {
	t.Helper()
	catalog, err := NewCatalog("17.2")
	require.NoError(t, err)
	platform := newFakePlatform()
	diag := &recordingDiagnostics{}
	svc := NewService(catalog, platform, WithDiagnostics(diag))
	t.Cleanup(svc.Close)
	return svc, platform, diag
}

// capture records callback deliveries.
type capture struct {
	mu       sync.Mutex
	statuses []Status
	errs     []error
}

func (c *capture) callback(status Status, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, status)
	c.errs = append(c.errs, err)
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.statuses)
}
