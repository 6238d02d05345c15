package engine

import (
	"errors"
	"strings"
)

// FeatureDynamicLoader is present when namespaces can be compiled from
// source at runtime rather than only loaded ahead of time.
const FeatureDynamicLoader = "dynamic-loader"

var (
	ErrNamespaceNotFound = errors.New("namespace not found")
	ErrForeignCallable   = errors.New("callable belongs to another runtime")
	ErrPanic             = errors.New("runtime panic")
	ErrClosed            = errors.New("engine closed")
)

// Callable is a function bound inside a namespace.
type Callable interface {
	Namespace() string
	Symbol() string
}

// SymbolTable resolves and invokes functions in namespaces.
type SymbolTable interface {
	// Require loads ns, compiling it if needed. Loading is idempotent.
	Require(ns string) error
	// Resolve returns the callable bound to symbol in a loaded namespace.
	// It never fails: anything unresolvable is reported as absent.
	Resolve(ns, symbol string) (Callable, bool)
	// Invoke calls fn. Exceptions and panics raised by the call are returned.
	Invoke(fn Callable, args ...any) (any, error)
}

// Capabilities answers questions about how the runtime was built.
type Capabilities interface {
	HasFeature(name string) bool
	HasResource(path string) bool
}

// Runtime is the full surface used by the application.
type Runtime interface {
	SymbolTable
	Capabilities
	Eval(source string) (any, error)
}

// NamespacePath maps a namespace identifier to its module path.
func NamespacePath(ns string) string {
	p := strings.ReplaceAll(ns, ".", "/")
	p = strings.ReplaceAll(p, "-", "_")
	return p + ".js"
}
