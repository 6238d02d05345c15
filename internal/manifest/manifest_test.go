package manifest

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
name: example
components:
  - type: com.example.foo.NekoActivity
    launcher: true
  - type: com.example.Settings
    namespace: com.example.settings-ui
preload:
  - com.example.shared
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "example", m.Name)
	assert.Len(t, m.Components, 2)
	assert.Equal(t, []string{"com.example.shared"}, m.Preload)

	launcher := m.Launcher()
	assert.Equal(t, "com.example.foo.NekoActivity", launcher.Type)
	assert.Equal(t, "com.example.foo.neko-activity", launcher.ResolvedNamespace())

	settings, ok := m.Component("com.example.Settings")
	require.True(t, ok)
	assert.Equal(t, "com.example.settings-ui", settings.ResolvedNamespace())

	_, ok = m.Component("com.example.Missing")
	assert.False(t, ok)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "no components",
			content: "name: empty\n",
			errMsg:  "no components",
		},
		{
			name: "no launcher",
			content: `
components:
  - type: a.B
`,
			errMsg: "got 0",
		},
		{
			name: "two launchers",
			content: `
components:
  - type: a.B
    launcher: true
  - type: a.C
    launcher: true
`,
			errMsg: "got 2",
		},
		{
			name: "duplicate type",
			content: `
components:
  - type: a.B
    launcher: true
  - type: a.B
`,
			errMsg: "duplicate component a.B",
		},
		{
			name: "missing type",
			content: `
components:
  - launcher: true
`,
			errMsg: "components[0].type is required",
		},
		{
			name: "blank preload",
			content: `
components:
  - type: a.B
    launcher: true
preload: [""]
`,
			errMsg: "preload[0] is empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("components: [\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{DefaultPath: {Data: []byte(sample)}}

	m, err := Load(fsys, DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, "example", m.Name)

	_, err = Load(fsys, "nope.yaml")
	assert.ErrorContains(t, err, "read manifest")
}
