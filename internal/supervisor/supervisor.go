// Package supervisor launches the trading service and reports how it ended.
package supervisor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/cfdshell/cfdshell/internal/errors"
	"github.com/cfdshell/cfdshell/internal/metrics"
)

// Handle is one service run. It resolves exactly once.
type Handle struct {
	done      chan struct{}
	err       error
	startedAt time.Time
	stoppedAt time.Time
}

// Done is closed when the service has stopped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the terminal outcome: nil for a normal stop, a ServiceLaunch
// ShellError otherwise. Only valid after Done is closed.
func (h *Handle) Err() error {
	<-h.done
	return h.err
}

// Supervisor starts the service out-of-band from the UI flow. It never
// restarts the service.
type Supervisor struct {
	launcher Launcher
	log      *zap.SugaredLogger
	metrics  *metrics.Metrics
}

// New creates a Supervisor.
func New(launcher Launcher, log *zap.SugaredLogger, m *metrics.Metrics) *Supervisor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Supervisor{launcher: launcher, log: log, metrics: m}
}

// Launch runs the service in its own goroutine and returns immediately.
// onStop, if set, is called from that goroutine with the terminal outcome.
// A stop caused by ctx cancellation (shell shutdown) is a normal stop.
func (s *Supervisor) Launch(ctx context.Context, network, dataDir string, port int, onStop func(error)) *Handle {
	h := &Handle{
		done:      make(chan struct{}),
		startedAt: time.Now(),
	}

	go func() {
		err := s.launcher.Run(ctx, network, dataDir, port)
		h.stoppedAt = time.Now()

		switch {
		case err == nil:
			s.log.Infow("Service stopped", "uptime", h.stoppedAt.Sub(h.startedAt))
			s.metrics.ServiceStops.WithLabelValues("normal").Inc()
		case ctx.Err() != nil:
			s.log.Infow("Service stopped on shutdown", "reason", err)
			s.metrics.ServiceStops.WithLabelValues("shutdown").Inc()
			err = nil
		default:
			err = apperrors.New(apperrors.CodeServiceLaunch, "supervisor.Launch", "service failed", err)
			s.log.Errorw("Service failed", "network", network, "port", port, "error", err)
			s.metrics.ServiceStops.WithLabelValues("failure").Inc()
		}

		h.err = err
		close(h.done)
		if onStop != nil {
			onStop(err)
		}
	}()

	return h
}

// IsServiceError reports whether err came from a failed service run.
func IsServiceError(err error) bool {
	return errors.Is(err, apperrors.ErrServiceLaunch)
}
