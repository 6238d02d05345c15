/*
Package bridge delegates host component lifecycles to functions in script
namespaces.

A component type name such as com.example.foo.NekoActivity resolves by
convention to the namespace com.example.foo.neko-activity. Every callback is
optional; the namespace may export any of:

	onCreate(instance, bundle)
	onStart(instance), onResume(instance), onPause(instance),
	onStop(instance), onDestroy(instance)
	onSaveInstanceState(instance, bundle)
	onRestoreInstanceState(instance, bundle)
	makeUi(instance)  // returns the view; used by ReloadUI and when onCreate is absent

Live instances are tracked in a process-wide Registry keyed by namespace so
that tooling (the remote REPL) can find and reload them. Registry entries are
weak: they never keep a destroyed component alive, and stale entries resolve
as absent at lookup time.
*/
package bridge
