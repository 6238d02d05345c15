package host

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBadTransition is returned when a transition is requested out of host order.
var ErrBadTransition = errors.New("lifecycle transition out of order")

// Callbacks receives lifecycle transitions for one component.
type Callbacks interface {
	OnCreate(saved *Bundle)
	OnStart()
	OnResume()
	OnPause()
	OnStop()
	OnDestroy()
	OnSaveInstanceState(out *Bundle)
	OnRestoreInstanceState(saved *Bundle)
}

// State is the lifecycle state of a component.
type State int

const (
	StateInitialized State = iota
	StateCreated
	StateStarted
	StateResumed
	StatePaused
	StateStopped
	StateDestroyed
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateCreated:
		return "created"
	case StateStarted:
		return "started"
	case StateResumed:
		return "resumed"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Controller delivers transitions to a component in the order
// create → start → resume → {pause → stop → start → resume}* → destroy.
// Each callback runs on the window's looper.
type Controller struct {
	window    *Window
	callbacks Callbacks

	mu    sync.Mutex
	state State
	saved *Bundle
}

// NewController binds callbacks to a window.
func NewController(window *Window, callbacks Callbacks) *Controller {
	return &Controller{
		window:    window,
		callbacks: callbacks,
	}
}

// Window returns the controlled window.
func (c *Controller) Window() *Window {
	return c.window
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Create delivers the create transition. saved is nil for a fresh start.
func (c *Controller) Create(saved *Bundle) error {
	return c.transition("create", []State{StateInitialized}, StateCreated, func() {
		c.saved = saved
		c.callbacks.OnCreate(saved)
	})
}

// Start delivers start. On the first start after a create with saved state,
// restore-state follows it.
func (c *Controller) Start() error {
	return c.transition("start", []State{StateCreated, StateStopped}, StateStarted, func() {
		c.callbacks.OnStart()
		if c.saved != nil {
			saved := c.saved
			c.saved = nil
			c.callbacks.OnRestoreInstanceState(saved)
		}
	})
}

// Resume delivers resume.
func (c *Controller) Resume() error {
	return c.transition("resume", []State{StateStarted, StatePaused}, StateResumed, c.callbacks.OnResume)
}

// Pause delivers pause.
func (c *Controller) Pause() error {
	return c.transition("pause", []State{StateResumed}, StatePaused, c.callbacks.OnPause)
}

// Stop delivers stop.
func (c *Controller) Stop() error {
	return c.transition("stop", []State{StatePaused, StateStarted}, StateStopped, c.callbacks.OnStop)
}

// SaveState asks the component to persist its state into a new bundle.
// Only valid while paused or stopped.
func (c *Controller) SaveState() (*Bundle, error) {
	out := NewBundle()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePaused && c.state != StateStopped {
		return nil, fmt.Errorf("%w: save-state from %s", ErrBadTransition, c.state)
	}
	if err := c.window.looper.RunSync(func() { c.callbacks.OnSaveInstanceState(out) }); err != nil {
		return nil, err
	}
	return out, nil
}

// Destroy delivers destroy and marks the window destroyed.
func (c *Controller) Destroy() error {
	return c.transition("destroy", []State{StateCreated, StateStopped}, StateDestroyed, func() {
		c.callbacks.OnDestroy()
		c.window.markDestroyed()
	})
}

// Launch runs create, start and resume.
func (c *Controller) Launch(saved *Bundle) error {
	for _, step := range []func() error{
		func() error { return c.Create(saved) },
		c.Start,
		c.Resume,
	} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown walks the component down to destroyed from whatever state it is
// in, returning the state saved on the way down (nil if it never started).
func (c *Controller) Shutdown() (*Bundle, error) {
	var saved *Bundle
	c.window.Finish()

	if c.State() == StateResumed {
		if err := c.Pause(); err != nil {
			return nil, err
		}
	}
	if s := c.State(); s == StatePaused || s == StateStarted {
		if err := c.Stop(); err != nil {
			return nil, err
		}
		b, err := c.SaveState()
		if err != nil {
			return nil, err
		}
		saved = b
	}
	if c.State() == StateDestroyed {
		return saved, nil
	}
	if err := c.Destroy(); err != nil {
		return nil, err
	}
	return saved, nil
}

func (c *Controller) transition(name string, from []State, to State, fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	allowed := false
	for _, s := range from {
		if c.state == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s from %s", ErrBadTransition, name, c.state)
	}

	if err := c.window.looper.RunSync(fn); err != nil {
		return err
	}
	c.state = to
	return nil
}
