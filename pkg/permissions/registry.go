package permissions

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// pendingRequest is a caller continuation waiting for an OS notification.
type pendingRequest struct {
	id      string
	name    Name
	created time.Time
	deliver func(Status, error)
}

// pendingRegistry holds at most one pending request per capability.
type pendingRegistry struct {
	mu      sync.Mutex
	pending map[Capability]*pendingRequest
}

func newPendingRegistry() *pendingRegistry {
	return &pendingRegistry{pending: make(map[Capability]*pendingRequest)}
}

func newPendingRequest(name Name, deliver func(Status, error)) *pendingRequest {
	return &pendingRequest{
		id:      uuid.NewString(),
		name:    name,
		created: time.Now(),
		deliver: deliver,
	}
}

// put stores p under c and returns the request it replaced, if any.
func (r *pendingRegistry) put(c Capability, p *pendingRequest) (replaced *pendingRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	replaced = r.pending[c]
	r.pending[c] = p
	return replaced
}

// takeFirst removes and returns the pending request under the first key in
// keys that has one. The lookup and removal happen under one lock.
func (r *pendingRegistry) takeFirst(keys ...Capability) (Capability, *pendingRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range keys {
		if p, ok := r.pending[c]; ok {
			delete(r.pending, c)
			return c, p, true
		}
	}
	return "", nil, false
}

// withdraw removes the request under c only if it is still the one with id.
func (r *pendingRegistry) withdraw(c Capability, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pending[c]; ok && p.id == id {
		delete(r.pending, c)
		return true
	}
	return false
}

func (r *pendingRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *pendingRegistry) has(c Capability) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[c]
	return ok
}
