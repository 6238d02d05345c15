package bridge

import (
	"sort"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/nsbridge/internal/engine"
	"github.com/GriffinCanCode/nsbridge/internal/host"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/monitoring"
)

// Namespaced is implemented by components that pick their namespace
// explicitly instead of deriving it from their type name.
type Namespaced interface {
	Namespace() string
}

// Bridge attaches host windows to namespaces and exposes the tooling
// surface over live instances.
type Bridge struct {
	rt       engine.SymbolTable
	registry *Registry
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithRegistry uses r instead of the process-wide registry.
func WithRegistry(r *Registry) Option {
	return func(b *Bridge) { b.registry = r }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

// WithMetrics enables metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

// New creates a bridge over the given runtime.
func New(rt engine.SymbolTable, opts ...Option) *Bridge {
	b := &Bridge{
		rt:       rt,
		registry: Default(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.Named("bridge")
	return b
}

type attachOptions struct {
	namespace string
}

// AttachOption customizes a single attachment.
type AttachOption func(*attachOptions)

// WithNamespace overrides the convention-derived namespace.
func WithNamespace(ns string) AttachOption {
	return func(o *attachOptions) { o.namespace = ns }
}

// Attach binds a window of the given component type to its namespace. The
// returned instance's Callbacks must be handed to the host controller.
func (b *Bridge) Attach(typeName string, window *host.Window, opts ...AttachOption) *Instance {
	var o attachOptions
	for _, opt := range opts {
		opt(&o)
	}

	ns := o.namespace
	if ns == "" {
		ns = FromTypeName(typeName)
	}
	return newInstance(b, typeName, ns, window)
}

// Bind attaches a window for a Go component value, using its type name and
// honoring Namespaced.
func (b *Bridge) Bind(component any, window *host.Window) *Instance {
	var opts []AttachOption
	if n, ok := component.(Namespaced); ok && n.Namespace() != "" {
		opts = append(opts, WithNamespace(n.Namespace()))
	}
	return b.Attach(TypeNameOf(component), window, opts...)
}

// Lookup returns the most recent live instance for ns.
func (b *Bridge) Lookup(ns string) (*Instance, bool) {
	return b.registry.Lookup(ns)
}

// ReloadUI schedules a UI reload for inst.
func (b *Bridge) ReloadUI(inst *Instance) bool {
	if inst == nil {
		return false
	}
	return inst.ReloadUI()
}

// ReloadAll schedules a UI reload on every tracked instance that is neither
// finishing nor destroyed, and returns how many were scheduled.
func (b *Bridge) ReloadAll() int {
	n := 0
	b.registry.Range(func(ns string, inst *Instance) bool {
		if inst.IsFinishing() || inst.IsDestroyed() {
			return true
		}
		b.logger.Info("reloadAll: reloading", zap.String("ns", ns))
		if inst.ReloadUI() {
			n++
		}
		return true
	})
	return n
}

// Namespace returns the namespace an instance is bound to.
func (b *Bridge) Namespace(inst *Instance) string {
	if inst == nil {
		return ""
	}
	return inst.Namespace()
}

// Instances returns snapshots of every live tracked instance, ordered by
// namespace.
func (b *Bridge) Instances() []Info {
	var out []Info
	b.registry.Range(func(_ string, inst *Instance) bool {
		out = append(out, inst.Info())
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Namespace < out[j].Namespace })
	return out
}

// Registry returns the registry backing the bridge.
func (b *Bridge) Registry() *Registry {
	return b.registry
}
