package app

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/GriffinCanCode/nsbridge/internal/bridge"
	"github.com/GriffinCanCode/nsbridge/internal/engine"
	"github.com/GriffinCanCode/nsbridge/internal/host"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/config"
)

const manifestYAML = `
name: test-app
components:
  - type: main.MainActivity
    launcher: true
  - type: main.Detail
    namespace: main.detail-view
preload:
  - lib.shared
`

const mainActivity = `
var clicks = 0;
exports.onCreate = function (activity, bundle) {
	clicks = (bundle !== null && bundle.has('clicks')) ? bundle.get('clicks') : 0;
	activity.setContent(exports.makeUi(activity));
};
exports.makeUi = function (activity) { return 'resumed ' + clicks; };
exports.onResume = function () { clicks++; };
exports.onSaveInstanceState = function (activity, bundle) { bundle.put('clicks', clicks); };
`

const detailView = `
exports.makeUi = function (activity) { return 'detail for ' + activity.namespace(); };
`

const sharedLib = `
exports.loadedAt = Date.now();
`

const replServer = `
exports.start = function () { return require('host:repl').listen('127.0.0.1:0'); };
`

func testModules() fstest.MapFS {
	return fstest.MapFS{
		"manifest.yaml":         {Data: []byte(manifestYAML)},
		"main/main_activity.js": {Data: []byte(mainActivity)},
		"main/detail_view.js":   {Data: []byte(detailView)},
		"lib/shared.js":         {Data: []byte(sharedLib)},
		"repl/server.js":        {Data: []byte(replServer)},
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.REPL.Addr = "127.0.0.1:0"
	cfg.Bootstrap.RetryBackoff = time.Millisecond
	return cfg
}

// newTestManager returns a manager over a fresh engine, looper and registry.
func newTestManager(t *testing.T) *Manager {
	t.Helper()
	rt := engine.NewGoja(testModules(), engine.DefaultConfig())
	looper := host.NewLooper(nil)
	looper.Start()
	t.Cleanup(func() {
		looper.Quit()
		_ = rt.Close()
	})
	return NewManager(bridge.New(rt, bridge.WithRegistry(bridge.NewRegistry())), looper, nil)
}
