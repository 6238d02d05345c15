package bridge

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/nsbridge/internal/engine"
	"github.com/GriffinCanCode/nsbridge/internal/host"
)

type fakeFn func(args ...any) (any, error)

type fakeCallable struct {
	ns, symbol string
}

func (c fakeCallable) Namespace() string { return c.ns }
func (c fakeCallable) Symbol() string    { return c.symbol }

// fakeRuntime is an in-memory symbol table keyed by namespace and symbol.
type fakeRuntime struct {
	mu       sync.Mutex
	loadErr  map[string]error
	symbols  map[string]map[string]fakeFn
	required []string
	calls    []string
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		loadErr: make(map[string]error),
		symbols: make(map[string]map[string]fakeFn),
	}
}

func (f *fakeRuntime) define(ns, symbol string, fn fakeFn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.symbols[ns] == nil {
		f.symbols[ns] = make(map[string]fakeFn)
	}
	f.symbols[ns][symbol] = fn
}

func (f *fakeRuntime) failLoad(ns string) {
	f.mu.Lock()
	f.loadErr[ns] = errors.New("syntax error")
	f.mu.Unlock()
}

func (f *fakeRuntime) Require(ns string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.required = append(f.required, ns)
	return f.loadErr[ns]
}

func (f *fakeRuntime) Resolve(ns, symbol string) (engine.Callable, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.symbols[ns][symbol]; !ok {
		return nil, false
	}
	return fakeCallable{ns, symbol}, true
}

func (f *fakeRuntime) Invoke(fn engine.Callable, args ...any) (any, error) {
	f.mu.Lock()
	impl := f.symbols[fn.Namespace()][fn.Symbol()]
	f.calls = append(f.calls, fn.Symbol())
	f.mu.Unlock()
	return impl(args...)
}

func (f *fakeRuntime) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type harness struct {
	rt     *fakeRuntime
	bridge *Bridge
	looper *host.Looper
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	l := host.NewLooper(nil)
	l.Start()
	t.Cleanup(l.Quit)

	rt := newFakeRuntime()
	return &harness{
		rt:     rt,
		bridge: New(rt, WithRegistry(NewRegistry())),
		looper: l,
	}
}

func (h *harness) attach(typeName string, opts ...AttachOption) (*Instance, *host.Controller) {
	w := host.NewWindow(h.looper)
	inst := h.bridge.Attach(typeName, w, opts...)
	return inst, host.NewController(w, inst.Callbacks())
}

// flush waits until every task posted to the looper so far has run.
func (h *harness) flush(t *testing.T) {
	t.Helper()
	require.NoError(t, h.looper.RunSync(func() {}))
}
