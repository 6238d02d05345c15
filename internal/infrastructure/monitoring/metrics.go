package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Lifecycle bridge metrics
	CallbacksTotal   *prometheus.CounterVec
	CallbackDuration *prometheus.HistogramVec
	NamespaceLoads   *prometheus.CounterVec
	RegistryEntries  prometheus.Gauge
	UIReloads        *prometheus.CounterVec

	// Bootstrap metrics
	BootstrapStages *prometheus.CounterVec
	WorkerTasks     *prometheus.CounterVec

	// Remote evaluation metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	REPLSessions    prometheus.Gauge
}

// NewMetrics creates a metrics collector on its own registry so several
// collectors can coexist in one process (tests, embedded hosts).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		CallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nsbridge_callbacks_total",
				Help: "Lifecycle callbacks dispatched into namespaces",
			},
			[]string{"transition", "outcome"},
		),
		CallbackDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nsbridge_callback_duration_seconds",
				Help:    "Lifecycle callback duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
			},
			[]string{"transition"},
		),
		NamespaceLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nsbridge_namespace_loads_total",
				Help: "Namespace require attempts",
			},
			[]string{"outcome"},
		),
		RegistryEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "nsbridge_registry_entries",
				Help: "Entries in the bridged instance registry",
			},
		),
		UIReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nsbridge_ui_reloads_total",
				Help: "UI reload requests",
			},
			[]string{"outcome"},
		),
		BootstrapStages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nsbridge_bootstrap_stages_total",
				Help: "Bootstrap stages reached",
			},
			[]string{"stage"},
		),
		WorkerTasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nsbridge_worker_tasks_total",
				Help: "Tasks run on stack-safe workers",
			},
			[]string{"pool", "outcome"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nsbridge_repl_requests_total",
				Help: "Remote evaluation HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nsbridge_repl_request_duration_seconds",
				Help:    "Remote evaluation request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		REPLSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "nsbridge_repl_sessions",
				Help: "Open websocket eval sessions",
			},
		),
	}
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordCallback records one lifecycle callback dispatch.
func (m *Metrics) RecordCallback(transition, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.CallbacksTotal.WithLabelValues(transition, outcome).Inc()
	if duration > 0 {
		m.CallbackDuration.WithLabelValues(transition).Observe(duration.Seconds())
	}
}

// RecordNamespaceLoad records a require attempt.
func (m *Metrics) RecordNamespaceLoad(ok bool) {
	if m == nil {
		return
	}
	m.NamespaceLoads.WithLabelValues(outcome(ok)).Inc()
}

// SetRegistryEntries sets the registry size gauge.
func (m *Metrics) SetRegistryEntries(count int) {
	if m == nil {
		return
	}
	m.RegistryEntries.Set(float64(count))
}

// RecordUIReload records a UI reload result ("ok", "error", "skipped").
func (m *Metrics) RecordUIReload(result string) {
	if m == nil {
		return
	}
	m.UIReloads.WithLabelValues(result).Inc()
}

// RecordBootstrapStage records that bootstrap reached a stage.
func (m *Metrics) RecordBootstrapStage(stage string) {
	if m == nil {
		return
	}
	m.BootstrapStages.WithLabelValues(stage).Inc()
}

// RecordWorkerTask records a finished worker task.
func (m *Metrics) RecordWorkerTask(pool string, ok bool) {
	if m == nil {
		return
	}
	m.WorkerTasks.WithLabelValues(pool, outcome(ok)).Inc()
}

// RecordHTTPRequest records a remote evaluation HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncREPLSessions increments open eval sessions.
func (m *Metrics) IncREPLSessions() {
	if m == nil {
		return
	}
	m.REPLSessions.Inc()
}

// DecREPLSessions decrements open eval sessions.
func (m *Metrics) DecREPLSessions() {
	if m == nil {
		return
	}
	m.REPLSessions.Dec()
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
