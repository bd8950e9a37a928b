package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.ProbeAttempts.Inc()
	a.ServiceStops.WithLabelValues("failure").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ProbeAttempts))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ProbeAttempts))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.ServiceStops.WithLabelValues("failure")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.PortBindFailures.Add(2)
	m.ServiceAlive.Set(1)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "cfdshell_port_bind_failures_total 2")
	assert.Contains(t, string(body), "cfdshell_service_alive 1")
}
