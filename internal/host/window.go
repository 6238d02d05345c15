package host

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// View is an opaque UI element handle.
type View any

// TextView is the fallback error view shown when a component cannot start.
type TextView struct {
	Text     string
	Padding  int
	TextSize float64
}

// NewErrorView builds the fallback view for message.
func NewErrorView(message string) *TextView {
	return &TextView{
		Text:     message,
		Padding:  32,
		TextSize: 16,
	}
}

// Window is a host UI component.
type Window struct {
	id     string
	looper *Looper

	mu       sync.RWMutex
	content  View
	revision uint64

	finishing atomic.Bool
	destroyed atomic.Bool
}

// NewWindow creates a window bound to the given UI looper.
func NewWindow(looper *Looper) *Window {
	return &Window{
		id:     uuid.New().String(),
		looper: looper,
	}
}

// ID returns the window identifier.
func (w *Window) ID() string {
	return w.id
}

// SetContent replaces the displayed content. Call only from the looper.
func (w *Window) SetContent(v View) {
	w.mu.Lock()
	w.content = v
	w.revision++
	w.mu.Unlock()
}

// Content returns the current content, or nil when unset.
func (w *Window) Content() View {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.content
}

// Revision counts content replacements.
func (w *Window) Revision() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.revision
}

// RunOnUIThread schedules fn on the window's looper.
func (w *Window) RunOnUIThread(fn func()) bool {
	return w.looper.Post(fn)
}

// Finish marks the window as finishing; the host will destroy it.
func (w *Window) Finish() {
	w.finishing.Store(true)
}

// IsFinishing reports whether Finish was called.
func (w *Window) IsFinishing() bool {
	return w.finishing.Load()
}

// IsDestroyed reports whether the destroy transition has been delivered.
func (w *Window) IsDestroyed() bool {
	return w.destroyed.Load()
}

func (w *Window) markDestroyed() {
	w.destroyed.Store(true)
}
