package platform

import (
	"sync"
	"testing"

	"github.com/go-drift/permissions-helper/pkg/errors"
)

// fakeBridge answers native method calls from per-method handlers and
// records event stream control calls.
type fakeBridge struct {
	mu       sync.Mutex
	methods  map[string]func(args map[string]any) (any, error)
	calls    []string
	starts   map[string]int
	stops    map[string]int
	startErr error
}

func newFakeBridge(t *testing.T) *fakeBridge {
	t.Helper()
	b := &fakeBridge{
		methods: map[string]func(map[string]any) (any, error){},
		starts:  map[string]int{},
		stops:   map[string]int{},
	}
	SetupTestBridge(t.Cleanup, b)
	return b
}

func (b *fakeBridge) on(method string, fn func(args map[string]any) (any, error)) {
	b.mu.Lock()
	b.methods[method] = fn
	b.mu.Unlock()
}

// answer makes method always reply with result.
func (b *fakeBridge) answer(method string, result any) {
	b.on(method, func(map[string]any) (any, error) { return result, nil })
}

func (b *fakeBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	decoded, err := DefaultCodec.Decode(args)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.calls = append(b.calls, channel+"#"+method)
	fn := b.methods[method]
	b.mu.Unlock()
	if fn == nil {
		return nil, ErrMethodNotFound
	}
	result, err := fn(parseMap(decoded))
	if err != nil {
		return nil, err
	}
	return DefaultCodec.Encode(result)
}

func (b *fakeBridge) StartEventStream(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.startErr != nil {
		return b.startErr
	}
	b.starts[channel]++
	return nil
}

func (b *fakeBridge) StopEventStream(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stops[channel]++
	return nil
}

func (b *fakeBridge) callCount(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == NativeChannelName+"#"+method {
			n++
		}
	}
	return n
}

func (b *fakeBridge) streamCounts(channel string) (starts, stops int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.starts[channel], b.stops[channel]
}

// errorCollector captures reported errors for the duration of a test.
type errorCollector struct {
	mu   sync.Mutex
	errs []*errors.Error
}

func (c *errorCollector) HandleError(err *errors.Error) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
}

func (c *errorCollector) HandlePanic(*errors.PanicError) {}

func (c *errorCollector) reported() []*errors.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*errors.Error(nil), c.errs...)
}

func collectErrors(t *testing.T) *errorCollector {
	t.Helper()
	c := &errorCollector{}
	errors.SetHandler(c)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return c
}
