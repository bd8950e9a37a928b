// Package portalloc finds a free loopback TCP port for the service.
//
// A port is checked by binding a throwaway listener and closing it again.
// Nothing holds the port afterwards, so another process may take it before
// the service binds; the service then fails to start and the liveness probe
// never succeeds.
package portalloc

import (
	"fmt"
	"math/rand"
	"net"
	"strconv"

	"go.uber.org/zap"

	apperrors "github.com/cfdshell/cfdshell/internal/errors"
	"github.com/cfdshell/cfdshell/internal/metrics"
)

const (
	// DefaultHost is the loopback address the service listens on.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the preferred well-known port.
	DefaultPort = 7113

	// DefaultRetries is the retry budget used by the shell.
	DefaultRetries = 3

	// MinRandomPort and MaxRandomPort bound randomized fallback candidates.
	MinRandomPort = 10000
	MaxRandomPort = 65535
)

// ListenFunc matches net.Listen.
type ListenFunc func(network, address string) (net.Listener, error)

// Allocation is the result of a successful allocation.
type Allocation struct {
	Port int
	// Attempts is the number of bind checks performed, including the successful one.
	Attempts int
	// Retries is the part of the retry budget consumed by failed checks.
	Retries int
}

// Allocator picks ports. The zero value is not usable; call New.
type Allocator struct {
	listen    ListenFunc
	candidate func() int
	log       *zap.SugaredLogger
	metrics   *metrics.Metrics
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithListen overrides the bind check.
func WithListen(fn ListenFunc) Option {
	return func(a *Allocator) { a.listen = fn }
}

// WithCandidates overrides the source of randomized fallback ports.
func WithCandidates(fn func() int) Option {
	return func(a *Allocator) { a.candidate = fn }
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(a *Allocator) { a.log = log }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Allocator) { a.metrics = m }
}

// New creates an Allocator bound to DefaultHost.
func New(opts ...Option) *Allocator {
	a := &Allocator{
		listen:    net.Listen,
		candidate: RandomPort,
		log:       zap.NewNop().Sugar(),
		metrics:   metrics.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RandomPort draws a uniformly random port in [MinRandomPort, MaxRandomPort].
func RandomPort() int {
	return MinRandomPort + rand.Intn(MaxRandomPort-MinRandomPort+1)
}

// Allocate returns preferred if it is free, otherwise retries with random
// candidates until maxRetries failed checks have been spent. Every bind
// error counts as a conflict. At most maxRetries+1 checks are made.
func (a *Allocator) Allocate(preferred, maxRetries int) (Allocation, error) {
	remaining := max(maxRetries, 0)
	candidate := preferred

	var res Allocation
	for {
		res.Attempts++
		err := a.check(candidate)
		if err == nil {
			res.Port = candidate
			a.log.Infow("Port allocated", "port", candidate, "attempts", res.Attempts, "retries", res.Retries)
			return res, nil
		}

		a.metrics.PortBindFailures.Inc()
		a.log.Warnw("Port unavailable", "port", candidate, "remaining_retries", remaining, "error", err)

		if remaining == 0 {
			return res, apperrors.New(apperrors.CodePortExhausted, "portalloc.Allocate",
				fmt.Sprintf("no free port after %d attempts", res.Attempts), err)
		}
		remaining--
		res.Retries++
		candidate = a.candidate()
	}
}

// check binds and immediately releases host:port.
func (a *Allocator) check(port int) error {
	l, err := a.listen("tcp", net.JoinHostPort(DefaultHost, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	return l.Close()
}
