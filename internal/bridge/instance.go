package bridge

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/nsbridge/internal/engine"
	"github.com/GriffinCanCode/nsbridge/internal/host"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/monitoring"
)

// Instance is a host window whose lifecycle is delegated to a namespace.
// The namespace is fixed when the instance is attached.
type Instance struct {
	id       string
	ns       string
	typeName string
	window   *host.Window
	bridge   *Bridge
	logger   *logging.Logger

	loaded atomic.Bool
}

// Info is a snapshot of an instance for tooling.
type Info struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	TypeName  string `json:"type"`
	Loaded    bool   `json:"loaded"`
	Finishing bool   `json:"finishing"`
	Destroyed bool   `json:"destroyed"`
}

// ID returns the instance identifier.
func (i *Instance) ID() string {
	return i.id
}

// Namespace returns the resolved namespace.
func (i *Instance) Namespace() string {
	return i.ns
}

// TypeName returns the component type name the instance was attached with.
func (i *Instance) TypeName() string {
	return i.typeName
}

// Loaded reports whether the namespace was required successfully.
func (i *Instance) Loaded() bool {
	return i.loaded.Load()
}

// SetContent replaces the window content. Call from lifecycle callbacks,
// which run on the UI looper.
func (i *Instance) SetContent(view host.View) {
	i.window.SetContent(view)
}

// Content returns the displayed view.
func (i *Instance) Content() host.View {
	return i.window.Content()
}

// Finish asks the host to close the component.
func (i *Instance) Finish() {
	i.window.Finish()
}

// IsFinishing reports whether the host window is finishing.
func (i *Instance) IsFinishing() bool {
	return i.window.IsFinishing()
}

// IsDestroyed reports whether the host window has been destroyed.
func (i *Instance) IsDestroyed() bool {
	return i.window.IsDestroyed()
}

// Info returns a snapshot of the instance.
func (i *Instance) Info() Info {
	return Info{
		ID:        i.id,
		Namespace: i.ns,
		TypeName:  i.typeName,
		Loaded:    i.Loaded(),
		Finishing: i.IsFinishing(),
		Destroyed: i.IsDestroyed(),
	}
}

// ReloadUI re-runs makeUi and replaces the content with its result. It may
// be called from any goroutine; the work is posted to the UI looper. It
// reports false when the looper no longer accepts work.
func (i *Instance) ReloadUI() bool {
	return i.window.RunOnUIThread(i.reloadNow)
}

func (i *Instance) reloadNow() {
	if !i.loaded.Load() {
		i.logger.Warn("reloadUi: namespace not loaded")
		i.bridge.metrics.RecordUIReload("skipped")
		return
	}
	fn, ok := i.bridge.rt.Resolve(i.ns, MakeUISymbol)
	if !ok {
		i.logger.Warn("reloadUi: no makeUi in namespace")
		i.bridge.metrics.RecordUIReload("skipped")
		return
	}

	view, err := i.bridge.rt.Invoke(fn, i)
	if err != nil {
		i.logger.Error("reloadUi failed", zap.Error(err))
		i.bridge.metrics.RecordUIReload("error")
		return
	}
	if view != nil {
		i.window.SetContent(view)
	}
	i.bridge.metrics.RecordUIReload("ok")
	i.logger.Info("UI reloaded")
}

// Callbacks returns the host lifecycle receiver for this instance.
func (i *Instance) Callbacks() host.Callbacks {
	return callbacks{i}
}

func (i *Instance) create(saved *host.Bundle) {
	b := i.bridge
	i.logger.Info("onCreate", zap.String("type", i.typeName))

	b.registry.Register(i.ns, i)
	b.metrics.SetRegistryEntries(b.registry.Len())

	if err := b.rt.Require(i.ns); err != nil {
		b.metrics.RecordNamespaceLoad(false)
		i.logger.Error("failed to require namespace", zap.Error(err))
		i.showError("Failed to load namespace: " + i.ns)
		return
	}
	b.metrics.RecordNamespaceLoad(true)
	i.loaded.Store(true)

	if fn, ok := b.rt.Resolve(i.ns, Create.Symbol()); ok {
		if _, err := i.invoke(Create, fn, i, bundleArg(saved)); err != nil {
			i.logger.Error("onCreate failed", zap.Error(err))
			i.showError("onCreate failed: " + err.Error())
		}
		return
	}
	b.metrics.RecordCallback(Create.String(), "absent", 0)

	fn, ok := b.rt.Resolve(i.ns, MakeUISymbol)
	if !ok {
		i.logger.Warn("no onCreate or makeUi in namespace")
		return
	}
	view, err := i.invoke(Create, fn, i)
	if err != nil {
		i.logger.Error("makeUi failed", zap.Error(err))
		i.showError("makeUi failed: " + err.Error())
		return
	}
	if view != nil {
		i.window.SetContent(view)
	}
}

// dispatch runs the optional callback for t. Failures are logged and
// swallowed so one callback cannot break host lifecycle processing.
func (i *Instance) dispatch(t Transition, state *host.Bundle) {
	b := i.bridge
	if !i.loaded.Load() {
		b.metrics.RecordCallback(t.String(), "skipped", 0)
		return
	}
	fn, ok := b.rt.Resolve(i.ns, t.Symbol())
	if !ok {
		b.metrics.RecordCallback(t.String(), "absent", 0)
		return
	}

	args := []any{i}
	if t.carriesState() {
		args = append(args, bundleArg(state))
	}
	if _, err := i.invoke(t, fn, args...); err != nil {
		i.logger.Error(t.Symbol()+" failed", zap.Error(err))
	}
}

func (i *Instance) invoke(t Transition, fn engine.Callable, args ...any) (any, error) {
	timer := monitoring.NewTimer(i.bridge.metrics, t.String())
	start := time.Now()

	out, err := i.bridge.rt.Invoke(fn, args...)
	if err != nil {
		timer.Stop("error")
		return nil, err
	}
	timer.Stop("ok")
	i.logger.Debug("callback returned",
		zap.String("symbol", fn.Symbol()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func (i *Instance) destroy() {
	i.dispatch(Destroy, nil)
	i.bridge.registry.unregisterInstance(i.ns, i)
	i.bridge.metrics.SetRegistryEntries(i.bridge.registry.Len())
}

func (i *Instance) showError(message string) {
	i.window.SetContent(host.NewErrorView(message))
}

func (i *Instance) String() string {
	return fmt.Sprintf("Instance(%s, %s)", i.ns, i.id)
}

// bundleArg keeps a nil bundle from reaching scripts as a typed nil.
func bundleArg(b *host.Bundle) any {
	if b == nil {
		return nil
	}
	return b
}

type callbacks struct {
	i *Instance
}

func (c callbacks) OnCreate(saved *host.Bundle) { c.i.create(saved) }
func (c callbacks) OnStart()                    { c.i.dispatch(Start, nil) }
func (c callbacks) OnResume()                   { c.i.dispatch(Resume, nil) }
func (c callbacks) OnPause()                    { c.i.dispatch(Pause, nil) }
func (c callbacks) OnStop()                     { c.i.dispatch(Stop, nil) }
func (c callbacks) OnDestroy()                  { c.i.destroy() }
func (c callbacks) OnSaveInstanceState(out *host.Bundle) {
	c.i.dispatch(SaveState, out)
}
func (c callbacks) OnRestoreInstanceState(saved *host.Bundle) {
	c.i.dispatch(RestoreState, saved)
}

func newInstance(b *Bridge, typeName, ns string, window *host.Window) *Instance {
	id := uuid.New().String()
	return &Instance{
		id:       id,
		ns:       ns,
		typeName: typeName,
		window:   window,
		bridge:   b,
		logger:   b.logger.With(zap.String("ns", ns), zap.String("instance", id)),
	}
}
