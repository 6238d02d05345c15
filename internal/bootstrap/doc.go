/*
Package bootstrap initializes the script runtime once per process and adapts
to how the runtime was built.

Three configurations are recognized at startup:

  - no dynamic loader (ahead-of-time build): nothing else is checked
  - dynamic loader without the remote evaluation resources: logged and skipped
  - both present: the remote evaluation service is started on a worker

Runtime initialization and namespace loading can recurse deeply, so all of it
runs on stack-safe workers and never on the UI looper. Failures during
startup are logged and never propagated to the host.
*/
package bootstrap
