package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/nsbridge/internal/bridge"
)

// DefaultPath is where the manifest lives in a module filesystem.
const DefaultPath = "manifest.yaml"

var ErrInvalid = errors.New("invalid manifest")

// Manifest is the root of a manifest file.
type Manifest struct {
	Name       string      `yaml:"name"`
	Components []Component `yaml:"components"`
	Preload    []string    `yaml:"preload,omitempty"`
}

// Component declares one bridged UI component.
type Component struct {
	// Type is the dotted, fully-qualified component type name.
	Type string `yaml:"type"`
	// Namespace overrides the namespace derived from Type.
	Namespace string `yaml:"namespace,omitempty"`
	Launcher  bool   `yaml:"launcher,omitempty"`
}

// ResolvedNamespace returns the namespace the component binds to.
func (c Component) ResolvedNamespace() string {
	if c.Namespace != "" {
		return c.Namespace
	}
	return bridge.FromTypeName(c.Type)
}

// Parse decodes and validates manifest content.
func Parse(content []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the manifest at path in fsys.
func Load(fsys fs.FS, path string) (*Manifest, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(content)
}

// Validate checks that every component names a unique type and that
// exactly one component is the launcher.
func (m *Manifest) Validate() error {
	if len(m.Components) == 0 {
		return fmt.Errorf("%w: no components", ErrInvalid)
	}

	seen := make(map[string]struct{}, len(m.Components))
	launchers := 0
	for i, c := range m.Components {
		if strings.TrimSpace(c.Type) == "" {
			return fmt.Errorf("%w: components[%d].type is required", ErrInvalid, i)
		}
		if _, dup := seen[c.Type]; dup {
			return fmt.Errorf("%w: duplicate component %s", ErrInvalid, c.Type)
		}
		seen[c.Type] = struct{}{}
		if c.Launcher {
			launchers++
		}
	}
	if launchers != 1 {
		return fmt.Errorf("%w: want exactly one launcher, got %d", ErrInvalid, launchers)
	}

	for i, ns := range m.Preload {
		if strings.TrimSpace(ns) == "" {
			return fmt.Errorf("%w: preload[%d] is empty", ErrInvalid, i)
		}
	}
	return nil
}

// Launcher returns the launcher component of a validated manifest.
func (m *Manifest) Launcher() Component {
	for _, c := range m.Components {
		if c.Launcher {
			return c
		}
	}
	return Component{}
}

// Component returns the component declared with typeName.
func (m *Manifest) Component(typeName string) (Component, bool) {
	for _, c := range m.Components {
		if c.Type == typeName {
			return c, true
		}
	}
	return Component{}, false
}
