package app

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/nsbridge/internal/bridge"
	"github.com/GriffinCanCode/nsbridge/internal/host"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/nsbridge/internal/manifest"
)

// State is the manager-level state of a running component.
type State string

const (
	StateActive     State = "active"
	StateBackground State = "background"
	StateDestroyed  State = "destroyed"
)

// Component is a running bridged component.
type Component struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Namespace string    `json:"namespace"`
	CreatedAt time.Time `json:"created_at"`

	mu    sync.RWMutex
	state State

	instance   *bridge.Instance
	controller *host.Controller
}

// State returns the manager-level state.
func (c *Component) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Component) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Instance returns the bridged instance.
func (c *Component) Instance() *bridge.Instance {
	return c.instance
}

// Lifecycle returns the host lifecycle state.
func (c *Component) Lifecycle() host.State {
	return c.controller.State()
}

// Stats summarizes the running components.
type Stats struct {
	Total      int     `json:"total"`
	Active     int     `json:"active"`
	Background int     `json:"background"`
	Focused    *string `json:"focused,omitempty"`
}

// Manager orchestrates component lifecycle.
type Manager struct {
	bridge    *bridge.Bridge
	looper    *host.Looper
	logger    *logging.Logger
	newWindow func() *host.Window

	components sync.Map
	mu         sync.Mutex
	focusedID  *string

	savedMu sync.Mutex
	saved   map[string]*host.Bundle
}

// NewManager creates a manager launching components on looper.
func NewManager(b *bridge.Bridge, looper *host.Looper, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		bridge: b,
		looper: looper,
		logger: logger.Named("manager"),
		saved:  make(map[string]*host.Bundle),
	}
	m.newWindow = func() *host.Window { return host.NewWindow(m.looper) }
	return m
}

// Spawn launches a component into the foreground, then moves the
// previously focused one to the background. State saved when a component
// of the same type was last closed is handed to the new instance and kept
// if the launch fails.
func (m *Manager) Spawn(decl manifest.Component) (*Component, error) {
	window := m.newWindow()

	var opts []bridge.AttachOption
	if decl.Namespace != "" {
		opts = append(opts, bridge.WithNamespace(decl.Namespace))
	}
	inst := m.bridge.Attach(decl.Type, window, opts...)
	ctrl := host.NewController(window, inst.Callbacks())

	saved, _ := m.SavedState(decl.Type)
	if err := ctrl.Launch(saved); err != nil {
		// Tear down whatever part of the lifecycle ran.
		if _, serr := ctrl.Shutdown(); serr != nil {
			m.logger.Debug("teardown after failed launch", zap.String("type", decl.Type), zap.Error(serr))
		}
		return nil, fmt.Errorf("launch %s: %w", decl.Type, err)
	}
	m.takeSaved(decl.Type)

	if prev := m.focused(); prev != nil {
		m.background(prev)
	}

	c := &Component{
		ID:         window.ID(),
		Type:       decl.Type,
		Namespace:  inst.Namespace(),
		CreatedAt:  time.Now(),
		state:      StateActive,
		instance:   inst,
		controller: ctrl,
	}
	m.components.Store(c.ID, c)
	m.setFocused(c.ID)

	m.logger.Info("component launched",
		zap.String("id", c.ID),
		zap.String("type", c.Type),
		zap.String("ns", c.Namespace),
	)
	return c, nil
}

// Get retrieves a component by ID.
func (m *Manager) Get(id string) (*Component, bool) {
	val, ok := m.components.Load(id)
	if !ok {
		return nil, false
	}
	return val.(*Component), true
}

// List returns the components, optionally filtered by state, oldest first.
func (m *Manager) List(state *State) []*Component {
	var out []*Component
	m.components.Range(func(_, value any) bool {
		c := value.(*Component)
		if state == nil || c.State() == *state {
			out = append(out, c)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Focus brings a component to the foreground.
func (m *Manager) Focus(id string) bool {
	c, ok := m.Get(id)
	if !ok {
		return false
	}

	if prev := m.focused(); prev != nil && prev.ID != id {
		m.background(prev)
	}

	if c.controller.State() == host.StateStopped {
		if err := c.controller.Start(); err != nil {
			m.logger.Warn("restart failed", zap.String("id", id), zap.Error(err))
			return false
		}
	}
	if c.controller.State() != host.StateResumed {
		if err := c.controller.Resume(); err != nil {
			m.logger.Warn("resume failed", zap.String("id", id), zap.Error(err))
			return false
		}
	}
	c.setState(StateActive)
	m.setFocused(id)
	return true
}

// Close finishes and destroys a component. Its saved state is kept for the
// next Spawn of the same type.
func (m *Manager) Close(id string) bool {
	c, ok := m.Get(id)
	if !ok {
		return false
	}
	m.components.Delete(id)

	saved, err := c.controller.Shutdown()
	if err != nil {
		m.logger.Warn("shutdown failed", zap.String("id", id), zap.Error(err))
	}
	if saved != nil {
		m.savedMu.Lock()
		m.saved[c.Type] = saved
		m.savedMu.Unlock()
	}
	c.setState(StateDestroyed)

	m.mu.Lock()
	wasFocused := m.focusedID != nil && *m.focusedID == id
	if wasFocused {
		m.focusedID = nil
	}
	m.mu.Unlock()

	if wasFocused {
		if rest := m.List(nil); len(rest) > 0 {
			m.Focus(rest[len(rest)-1].ID)
		}
	}
	return true
}

// CloseAll closes every component, newest first.
func (m *Manager) CloseAll() int {
	all := m.List(nil)
	for i := len(all) - 1; i >= 0; i-- {
		m.Close(all[i].ID)
	}
	return len(all)
}

// Stats returns manager statistics.
func (m *Manager) Stats() Stats {
	var s Stats
	m.components.Range(func(_, value any) bool {
		c := value.(*Component)
		s.Total++
		switch c.State() {
		case StateActive:
			s.Active++
		case StateBackground:
			s.Background++
		}
		return true
	})
	if c := m.focused(); c != nil {
		ns := c.Namespace
		s.Focused = &ns
	}
	return s
}

// SavedState returns the state kept from the last closed component of
// typeName.
func (m *Manager) SavedState(typeName string) (*host.Bundle, bool) {
	m.savedMu.Lock()
	defer m.savedMu.Unlock()
	b, ok := m.saved[typeName]
	return b, ok
}

func (m *Manager) takeSaved(typeName string) *host.Bundle {
	m.savedMu.Lock()
	defer m.savedMu.Unlock()
	b := m.saved[typeName]
	delete(m.saved, typeName)
	return b
}

func (m *Manager) background(c *Component) {
	if c.controller.State() == host.StateResumed {
		if err := c.controller.Pause(); err != nil {
			m.logger.Warn("pause failed", zap.String("id", c.ID), zap.Error(err))
			return
		}
	}
	if c.controller.State() == host.StatePaused {
		if err := c.controller.Stop(); err != nil {
			m.logger.Warn("stop failed", zap.String("id", c.ID), zap.Error(err))
			return
		}
	}
	c.setState(StateBackground)
}

func (m *Manager) focused() *Component {
	m.mu.Lock()
	id := m.focusedID
	m.mu.Unlock()
	if id == nil {
		return nil
	}
	c, _ := m.Get(*id)
	return c
}

func (m *Manager) setFocused(id string) {
	m.mu.Lock()
	m.focusedID = &id
	m.mu.Unlock()
}
