// Package manifest declares the components of an application and the
// namespaces to preload at startup.
//
//	name: example
//	components:
//	  - type: com.example.foo.NekoActivity
//	    launcher: true
//	  - type: com.example.Settings
//	    namespace: com.example.settings-ui
//	preload:
//	  - com.example.shared
package manifest
