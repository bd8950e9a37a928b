// Package probe waits for the service to answer HTTP on its port.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	apperrors "github.com/cfdshell/cfdshell/internal/errors"
	"github.com/cfdshell/cfdshell/internal/metrics"
)

const (
	// DefaultInitialTimeout is the wait before the first attempt.
	DefaultInitialTimeout = 100 * time.Millisecond

	// DefaultRequestTimeout bounds a single liveness request.
	DefaultRequestTimeout = 2 * time.Second
)

// ErrAlreadyStarted is returned when a Probe is run twice.
var ErrAlreadyStarted = errors.New("probe already started")

// Checker performs one liveness request.
type Checker interface {
	Check(ctx context.Context, url string) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, url string) error

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context, url string) error {
	return f(ctx, url)
}

// HTTPChecker treats any HTTP response as alive. Only transport errors
// (refused, reset, timeout, DNS) count as not alive.
type HTTPChecker struct {
	Client *http.Client
}

// NewHTTPClient returns a client that reports redirects as responses
// instead of following them.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Check issues GET url.
func (c *HTTPChecker) Check(ctx context.Context, url string) error {
	client := c.Client
	if client == nil {
		client = NewHTTPClient(DefaultRequestTimeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.Body.Close()
}

// State is the probe's progress, reported before every attempt.
type State struct {
	Attempt int
	// Timeout is the wait scheduled before this attempt.
	Timeout time.Duration
}

// Options configures a Probe.
type Options struct {
	Checker Checker
	Clock   clockwork.Clock
	Logger  *zap.SugaredLogger
	Metrics *metrics.Metrics

	// OnAttempt is called before waiting for each attempt.
	OnAttempt func(State)
	// OnFailure is called after each failed attempt.
	OnFailure func(attempt int, err error)
}

// Probe polls a host/port until it answers, then reports Alive once.
// A Probe never gives up; only its context stops it.
type Probe struct {
	checker   Checker
	clock     clockwork.Clock
	log       *zap.SugaredLogger
	metrics   *metrics.Metrics
	onAttempt func(State)
	onFailure func(int, error)

	started atomic.Bool
}

// New creates a Probe. Missing options fall back to an HTTP checker, the
// real clock, a no-op logger and a private metrics registry.
func New(opts Options) *Probe {
	p := &Probe{
		checker:   opts.Checker,
		clock:     opts.Clock,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		onAttempt: opts.OnAttempt,
		onFailure: opts.OnFailure,
	}
	if p.checker == nil {
		p.checker = &HTTPChecker{}
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	if p.log == nil {
		p.log = zap.NewNop().Sugar()
	}
	if p.metrics == nil {
		p.metrics = metrics.New()
	}
	return p
}

// URL returns the probe and UI address for host:port.
func URL(host string, port int) string {
	return fmt.Sprintf("http://%s/", net.JoinHostPort(host, strconv.Itoa(port)))
}

// Start runs the probe in its own goroutine. onAlive is called from that
// goroutine at most once.
func (p *Probe) Start(ctx context.Context, host string, port int, initialTimeout time.Duration, onAlive func(url string)) {
	go func() {
		if err := p.Run(ctx, host, port, initialTimeout, onAlive); err != nil && !errors.Is(err, context.Canceled) {
			p.log.Warnw("Liveness probe stopped", "error", err)
		}
	}()
}

// Run blocks until the service answers (returns nil after calling onAlive)
// or ctx is done. The wait before attempt k is initialTimeout * 2^(k-1).
func (p *Probe) Run(ctx context.Context, host string, port int, initialTimeout time.Duration, onAlive func(url string)) error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	if initialTimeout <= 0 {
		initialTimeout = DefaultInitialTimeout
	}

	url := URL(host, port)
	schedule := newSchedule(initialTimeout, p.clock)

	for attempt := 1; ; attempt++ {
		state := State{Attempt: attempt, Timeout: schedule.NextBackOff()}
		if p.onAttempt != nil {
			p.onAttempt(state)
		}
		p.metrics.ProbeDelay.Set(state.Timeout.Seconds())

		timer := p.clock.NewTimer(state.Timeout)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.Chan():
		}

		p.metrics.ProbeAttempts.Inc()
		err := p.checker.Check(ctx, url)
		if err == nil {
			p.metrics.ServiceAlive.Set(1)
			p.log.Infow("Service is alive", "url", url, "attempt", attempt)
			onAlive(url)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = apperrors.New(apperrors.CodeProbeTransient, "probe.Run", "service not reachable", err)
		p.metrics.ProbeFailures.Inc()
		p.log.Debugw("Service not reachable yet", "url", url, "attempt", attempt, "waited", state.Timeout, "error", err)
		if p.onFailure != nil {
			p.onFailure(attempt, err)
		}
	}
}

// newSchedule returns a doubling, jitter-free schedule that never stops.
// MaxInterval only guards against time.Duration overflow.
func newSchedule(initial time.Duration, clock backoff.Clock) *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     initial,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         time.Duration(math.MaxInt64),
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               clock,
	}
	b.Reset()
	return b
}
