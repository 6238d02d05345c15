package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testComponent struct{}

type namedComponent struct{}

func (namedComponent) Namespace() string { return "custom.ns" }

func TestFromTypeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"com.example.foo.NekoActivity", "com.example.foo.neko-activity"},
		{"com.example.foo.MainActivity", "com.example.foo.main-activity"},
		{"com.example.foo_bar.MyHTTPActivity", "com.example.foo-bar.my-http-activity"},
		{"NekoActivity", "neko-activity"},
		{"HTTPServer", "http-server"},
		{"IOStream", "io-stream"},
		{"getHTTPResponseCode", "get-http-response-code"},
		{"ABC", "abc"},
		{"a.b.Simple", "a.b.simple"},
		{"already.kebab", "already.kebab"},
		{"com.x_y_z.A", "com.x-y-z.a"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FromTypeName(tt.in))
		})
	}
}

func TestFromTypeNameDeterministic(t *testing.T) {
	for _, in := range []string{"com.example.foo.NekoActivity", "x.YZWord", "Plain"} {
		first := FromTypeName(in)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, FromTypeName(in))
		}
	}
}

func TestTypeNameOf(t *testing.T) {
	assert.Equal(t, "github.com.GriffinCanCode.nsbridge.internal.bridge.testComponent", TypeNameOf(&testComponent{}))
	assert.Equal(t, TypeNameOf(testComponent{}), TypeNameOf(&testComponent{}))
	assert.Equal(t, "int", TypeNameOf(3))
	assert.Equal(t, "", TypeNameOf(nil))

	assert.Equal(t,
		"github.com.GriffinCanCode.nsbridge.internal.bridge.test-component",
		FromTypeName(TypeNameOf(testComponent{})),
	)
}

func TestTransitionSymbols(t *testing.T) {
	assert.Equal(t, "onCreate", Create.Symbol())
	assert.Equal(t, "onSaveInstanceState", SaveState.Symbol())
	assert.Equal(t, "onRestoreInstanceState", RestoreState.Symbol())
	assert.Equal(t, "", Transition(99).Symbol())
	assert.Equal(t, "save-state", SaveState.String())
	assert.Equal(t, "unknown", Transition(-1).String())

	assert.True(t, Create.carriesState())
	assert.False(t, Resume.carriesState())
}
