// Package metrics exposes Prometheus metrics for the bootstrap sequence.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds every collector the shell records. Each instance owns its
// registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	// PortBindFailures counts failed bind checks during port allocation.
	PortBindFailures prometheus.Counter
	// ProbeAttempts counts liveness requests issued.
	ProbeAttempts prometheus.Counter
	// ProbeFailures counts liveness requests that did not reach the service.
	ProbeFailures prometheus.Counter
	// ProbeDelay is the wait scheduled before the latest probe attempt.
	ProbeDelay prometheus.Gauge
	// ServiceAlive is 1 once the service answered a probe.
	ServiceAlive prometheus.Gauge
	// ServiceStops counts service terminations, partitioned by outcome.
	ServiceStops *prometheus.CounterVec
	// Navigations counts UI loads, partitioned by result.
	Navigations *prometheus.CounterVec
	// WindowTransitions counts window state changes, partitioned by target state.
	WindowTransitions *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PortBindFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cfdshell_port_bind_failures_total",
			Help: "Failed bind checks during port allocation",
		}),
		ProbeAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cfdshell_probe_attempts_total",
			Help: "Liveness probe requests issued",
		}),
		ProbeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cfdshell_probe_failures_total",
			Help: "Liveness probe requests that failed to reach the service",
		}),
		ProbeDelay: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cfdshell_probe_delay_seconds",
			Help: "Delay scheduled before the latest probe attempt",
		}),
		ServiceAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cfdshell_service_alive",
			Help: "1 once the service has answered a liveness probe",
		}),
		ServiceStops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cfdshell_service_stops_total",
			Help: "Service terminations by outcome",
		}, []string{"outcome"}),
		Navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cfdshell_navigations_total",
			Help: "UI loads into the main window by result",
		}, []string{"result"}),
		WindowTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cfdshell_window_transitions_total",
			Help: "Window state transitions by target state",
		}, []string{"state"}),
	}

	m.registry.MustRegister(
		m.PortBindFailures,
		m.ProbeAttempts,
		m.ProbeFailures,
		m.ProbeDelay,
		m.ServiceAlive,
		m.ServiceStops,
		m.Navigations,
		m.WindowTransitions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler returns an HTTP handler exposing m.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.SugaredLogger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infow("Metrics server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorw("Metrics server failed", "error", err)
		return err
	}
	return nil
}
