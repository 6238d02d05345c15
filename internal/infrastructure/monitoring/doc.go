/*
Package monitoring provides Prometheus metrics for the lifecycle bridge, the
runtime bootstrap and the remote evaluation server.

# Metrics

  - nsbridge_callbacks_total{transition,outcome}: dispatched callbacks
    (outcome is ok, absent, error or skipped)
  - nsbridge_callback_duration_seconds{transition}
  - nsbridge_namespace_loads_total{outcome}
  - nsbridge_registry_entries
  - nsbridge_ui_reloads_total{outcome}
  - nsbridge_bootstrap_stages_total{stage}
  - nsbridge_worker_tasks_total{pool,outcome}
  - nsbridge_repl_requests_total / nsbridge_repl_request_duration_seconds
  - nsbridge_repl_sessions

Every collector lives on a private registry exposed through Handler, and a nil
*Metrics records nothing so components can run unmetered.
*/
package monitoring
