package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCallback("create", "ok", time.Millisecond)
		m.RecordNamespaceLoad(true)
		m.SetRegistryEntries(3)
		m.RecordUIReload("ok")
		m.RecordBootstrapStage("capabilities")
		m.RecordWorkerTask("loader", false)
		m.RecordHTTPRequest("GET", "/", "200", time.Millisecond)
		m.IncREPLSessions()
		m.DecREPLSessions()
		NewTimer(m, "start").Stop("ok")
	})
}

func TestIndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordNamespaceLoad(true)
	a.RecordNamespaceLoad(false)
	a.RecordNamespaceLoad(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(a.NamespaceLoads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.NamespaceLoads.WithLabelValues("error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.NamespaceLoads.WithLabelValues("ok")))
}

func TestCallbackCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordCallback("resume", "absent", 0)
	NewTimer(m, "resume").Stop("ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallbacksTotal.WithLabelValues("resume", "absent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallbacksTotal.WithLabelValues("resume", "ok")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.SetRegistryEntries(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nsbridge_registry_entries 2")
}
