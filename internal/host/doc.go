/*
Package host models the UI framework that owns component lifecycles.

The bridge consumes it only through a few primitives:

  - Looper: the single UI-owning goroutine; any goroutine may Post work to it
  - Window: a component with replaceable content and finishing/destroyed state
  - Bundle: the state container handed to create/save/restore callbacks
  - Controller: delivers lifecycle transitions to Callbacks in host order

Content replacement is only ever performed from tasks running on the Looper.
*/
package host
