package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/logging"
)

// Config defines goja engine configuration.
type Config struct {
	Features         []string
	MaxCallStackSize int
	Logger           *logging.Logger
}

// DefaultConfig returns a configuration with dynamic loading enabled.
func DefaultConfig() Config {
	return Config{
		Features:         []string{FeatureDynamicLoader},
		MaxCallStackSize: 4096,
	}
}

// Goja is a Runtime backed by a single goja VM.
type Goja struct {
	mu       sync.Mutex
	vm       *goja.Runtime
	modules  *require.RequireModule
	registry *require.Registry

	fsys     fs.FS
	features map[string]struct{}
	loaded   map[string]*goja.Object
	logger   *logging.Logger
}

type gojaCallable struct {
	owner  *Goja
	ns     string
	symbol string
	fn     goja.Callable
}

func (c *gojaCallable) Namespace() string { return c.ns }
func (c *gojaCallable) Symbol() string    { return c.symbol }

// NewGoja creates an engine loading namespaces from fsys.
func NewGoja(fsys fs.FS, config Config) *Goja {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	g := &Goja{
		fsys:     fsys,
		features: make(map[string]struct{}, len(config.Features)),
		loaded:   make(map[string]*goja.Object),
		logger:   logger.Named("engine"),
	}
	for _, f := range config.Features {
		if f = strings.TrimSpace(f); f != "" {
			g.features[f] = struct{}{}
		}
	}

	g.registry = require.NewRegistry(require.WithLoader(g.loadSource))
	g.registry.RegisterNativeModule("host:log", g.logModule)

	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	if config.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(config.MaxCallStackSize)
	}
	g.vm = vm
	g.modules = g.registry.Enable(vm)
	g.setupGlobals()

	return g
}

// loadSource feeds module sources from the module filesystem.
func (g *Goja) loadSource(p string) ([]byte, error) {
	p = strings.TrimPrefix(path.Clean(p), "/")
	data, err := fs.ReadFile(g.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, require.ModuleFileDoesNotExistError
		}
		return nil, err
	}
	return data, nil
}

// RegisterNativeModule makes a Go module available to require(name).
func (g *Goja) RegisterNativeModule(name string, loader require.ModuleLoader) {
	g.registry.RegisterNativeModule(name, loader)
}

// Define binds a global value visible to every namespace and to Eval.
func (g *Goja) Define(name string, value any) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.vm == nil {
		return ErrClosed
	}
	return g.vm.Set(name, value)
}

// Require loads ns through the module registry.
func (g *Goja) Require(ns string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.vm == nil {
		return ErrClosed
	}
	if _, ok := g.loaded[ns]; ok {
		return nil
	}

	start := time.Now()
	var exports goja.Value
	err := g.guard(func() (err error) {
		exports, err = g.modules.Require("./" + NamespacePath(ns))
		return err
	})
	if err != nil {
		if errors.Is(err, require.InvalidModuleError) {
			return fmt.Errorf("require %s: %w", ns, ErrNamespaceNotFound)
		}
		return fmt.Errorf("require %s: %w", ns, err)
	}

	obj := g.vm.NewObject()
	if exports != nil && !goja.IsUndefined(exports) && !goja.IsNull(exports) {
		obj = exports.ToObject(g.vm)
	}
	g.loaded[ns] = obj

	g.logger.Debug("namespace loaded",
		zap.String("ns", ns),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Resolve looks up an exported function.
func (g *Goja) Resolve(ns, symbol string) (Callable, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	exports, ok := g.loaded[ns]
	if !ok || g.vm == nil {
		return nil, false
	}

	var fn goja.Callable
	err := g.guard(func() error {
		v := exports.Get(symbol)
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			return nil
		}
		fn, _ = goja.AssertFunction(v)
		return nil
	})
	if err != nil {
		g.logger.Warn("symbol lookup failed",
			zap.String("ns", ns),
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		return nil, false
	}
	if fn == nil {
		return nil, false
	}
	return &gojaCallable{owner: g, ns: ns, symbol: symbol, fn: fn}, true
}

// Invoke calls fn with args converted to JS values and exports the result.
func (g *Goja) Invoke(fn Callable, args ...any) (any, error) {
	c, ok := fn.(*gojaCallable)
	if !ok || c.owner != g {
		return nil, ErrForeignCallable
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.vm == nil {
		return nil, ErrClosed
	}

	var result any
	err := g.guard(func() error {
		values := make([]goja.Value, len(args))
		for i, a := range args {
			values[i] = g.vm.ToValue(a)
		}
		v, err := c.fn(goja.Undefined(), values...)
		if err != nil {
			return err
		}
		result = exportValue(v)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", c.ns, c.symbol, err)
	}
	return result, nil
}

// Eval runs source in the global scope and exports its completion value.
func (g *Goja) Eval(source string) (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.vm == nil {
		return nil, ErrClosed
	}

	var result any
	err := g.guard(func() error {
		v, err := g.vm.RunScript("<eval>", source)
		if err != nil {
			return err
		}
		result = exportValue(v)
		return nil
	})
	return result, err
}

// HasFeature reports whether a declared capability is compiled in.
func (g *Goja) HasFeature(name string) bool {
	_, ok := g.features[name]
	return ok
}

// HasResource reports whether p exists in the module filesystem.
func (g *Goja) HasResource(p string) bool {
	if g.fsys == nil {
		return false
	}
	_, err := fs.Stat(g.fsys, strings.TrimPrefix(p, "/"))
	return err == nil
}

// Loaded returns the namespaces required so far.
func (g *Goja) Loaded() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]string, 0, len(g.loaded))
	for ns := range g.loaded {
		out = append(out, ns)
	}
	return out
}

// Close releases the VM. Further calls return ErrClosed.
func (g *Goja) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.vm = nil
	g.loaded = nil
	return nil
}

// guard converts panics escaping the VM, including stack overflows raised
// as Go panics, into errors. Must hold g.mu.
func (g *Goja) guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%w: %w", ErrPanic, e)
				return
			}
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn()
}

func (g *Goja) setupGlobals() {
	console := g.vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		_ = console.Set(level, g.makeConsoleFunc(level))
	}
	_ = g.vm.Set("console", console)
}

// makeConsoleFunc routes console output to the structured logger.
func (g *Goja) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		g.emit(level, strings.Join(parts, " "))
		return goja.Undefined()
	}
}

// logModule backs require("host:log").
func (g *Goja) logModule(vm *goja.Runtime, module *goja.Object) {
	exports := module.Get("exports").(*goja.Object)
	for _, level := range []string{"debug", "info", "warn", "error"} {
		level := level
		_ = exports.Set(level, func(call goja.FunctionCall) goja.Value {
			g.emit(level, call.Argument(0).String())
			return goja.Undefined()
		})
	}
}

func (g *Goja) emit(level, msg string) {
	log := g.logger.Named("js")
	switch level {
	case "error":
		log.Error(msg)
	case "warn":
		log.Warn(msg)
	case "debug":
		log.Debug(msg)
	default:
		log.Info(msg)
	}
}

// exportValue converts goja value to Go value
func exportValue(val goja.Value) any {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}
