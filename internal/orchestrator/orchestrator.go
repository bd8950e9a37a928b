// Package orchestrator runs the bootstrap sequence: show the window, pick a
// port, start the service, wait for it to answer and load its UI.
//
// Every state change happens on the goroutine running Run. Everything else
// (allocator, supervisor, probe, window watchers, tray clicks, settings
// reloads) only posts events.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cfdshell/cfdshell/internal/metrics"
	"github.com/cfdshell/cfdshell/internal/models"
	"github.com/cfdshell/cfdshell/internal/portalloc"
	"github.com/cfdshell/cfdshell/internal/probe"
	"github.com/cfdshell/cfdshell/internal/supervisor"
	"github.com/cfdshell/cfdshell/internal/window"
)

// ShutdownTimeout bounds how long Run waits for the service after quitting.
const ShutdownTimeout = 10 * time.Second

const eventBuffer = 64

// Allocator picks the service port.
type Allocator interface {
	Allocate(preferred, maxRetries int) (portalloc.Allocation, error)
}

// Options wires an Orchestrator.
type Options struct {
	Host           string
	PreferredPort  int
	PortRetries    int
	InitialTimeout time.Duration
	Network        string
	DataDir        string

	Allocator  Allocator
	Supervisor *supervisor.Supervisor
	Probe      *probe.Probe

	NewWindow window.Factory
	// NewTray installs the tray; showApp and quit post tray actions.
	NewTray        func(showApp, quit func()) (window.Tray, error)
	Platform       window.Platform
	Policy         window.Policy
	StartMinimized bool

	// OnPortAllocated runs on the dispatcher once the port is fixed.
	OnPortAllocated func(portalloc.Allocation)
	// OnSettingsChanged runs on the dispatcher for every reload.
	OnSettingsChanged func(*models.Settings)

	Logger  *zap.SugaredLogger
	Metrics *metrics.Metrics
}

// Orchestrator is single-use: Run it once.
type Orchestrator struct {
	opts   Options
	log    *zap.SugaredLogger
	ctrl   *window.Controller
	events chan Event
	done   chan struct{}

	port    int
	handle  *supervisor.Handle
	failure error
}

// New validates opts and builds the window controller.
func New(opts Options) (*Orchestrator, error) {
	if opts.Allocator == nil || opts.Supervisor == nil || opts.Probe == nil {
		return nil, errors.New("allocator, supervisor and probe are required")
	}
	if opts.Host == "" {
		opts.Host = portalloc.DefaultHost
	}
	if opts.PreferredPort == 0 {
		opts.PreferredPort = portalloc.DefaultPort
	}
	if opts.InitialTimeout <= 0 {
		opts.InitialTimeout = probe.DefaultInitialTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	o := &Orchestrator{
		opts:   opts,
		log:    opts.Logger,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}

	cfg := window.Config{
		Policy:         opts.Policy,
		StartMinimized: opts.StartMinimized,
		NewWindow:      opts.NewWindow,
		Platform:       opts.Platform,
		Watch:          o.watch,
		Logger:         opts.Logger,
		Metrics:        opts.Metrics,
	}
	if opts.NewTray != nil {
		cfg.NewTray = func() (window.Tray, error) {
			return opts.NewTray(
				func() { o.Post(TrayAction{Action: ActionShowApp}) },
				func() { o.Post(TrayAction{Action: ActionQuit}) },
			)
		}
	}
	ctrl, err := window.NewController(cfg)
	if err != nil {
		return nil, err
	}
	o.ctrl = ctrl
	return o, nil
}

// Post delivers ev to the dispatcher. It drops the event once Run returned.
func (o *Orchestrator) Post(ev Event) {
	select {
	case o.events <- ev:
	case <-o.done:
	}
}

// Port returns the allocated port, or 0 before allocation. Only valid on the
// dispatcher or after Run returned.
func (o *Orchestrator) Port() int {
	return o.port
}

// Run executes the bootstrap sequence and dispatches events until the
// application quits or ctx is cancelled. It returns the bootstrap failure,
// if any, once the user has quit.
func (o *Orchestrator) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		o.waitService()
		close(o.done)
	}()

	o.ctrl.SetStatus(StatusStarting)
	if err := o.ctrl.Show(); err != nil {
		o.log.Errorw("Failed to open window", "error", err)
	}

	go o.allocate()

	for !o.ctrl.Quitting() {
		select {
		case <-ctx.Done():
			o.log.Infow("Shutting down", "reason", ctx.Err())
			o.ctrl.Quit()
		case ev := <-o.events:
			o.dispatch(runCtx, ev)
		}
	}
	return o.failure
}

func (o *Orchestrator) allocate() {
	alloc, err := o.opts.Allocator.Allocate(o.opts.PreferredPort, o.opts.PortRetries)
	if err != nil {
		o.Post(BootstrapFailed{Err: err})
		return
	}
	o.Post(PortAllocated{Allocation: alloc})
}

func (o *Orchestrator) dispatch(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case PortAllocated:
		o.onPortAllocated(ctx, e.Allocation)

	case BootstrapFailed:
		o.failure = e.Err
		o.log.Errorw("Bootstrap failed", "error", e.Err)
		o.ctrl.ShowError(e.Err.Error())
		o.ctrl.SetStatus(StatusFailed(e.Err))

	case ServiceStopped:
		o.ctrl.SetStatus(StatusStopped)
		if e.Err != nil {
			o.log.Warnw("Service is down, UI may be unavailable", "error", e.Err)
		}

	case Alive:
		o.ctrl.Alive(e.URL)
		o.ctrl.SetStatus(StatusRunning(o.port))

	case WindowReady:
		o.ctrl.Ready(e.Gen)

	case WindowClosed:
		o.ctrl.Closed(e.Gen)

	case TrayAction:
		o.log.Debugw("Tray action", "action", e.Action)
		switch e.Action {
		case ActionShowApp:
			if err := o.ctrl.Show(); err != nil {
				o.log.Errorw("Failed to open window", "error", err)
			}
		case ActionQuit:
			o.ctrl.Quit()
		}

	case SettingsChanged:
		o.ctrl.SetStartMinimized(e.Settings.Window.StartMinimized)
		if o.opts.OnSettingsChanged != nil {
			o.opts.OnSettingsChanged(e.Settings)
		}
	}
}

func (o *Orchestrator) onPortAllocated(ctx context.Context, alloc portalloc.Allocation) {
	if o.port != 0 {
		return
	}
	o.port = alloc.Port
	o.log.Infow("Port allocated", "port", alloc.Port, "attempts", alloc.Attempts)
	if o.opts.OnPortAllocated != nil {
		o.opts.OnPortAllocated(alloc)
	}
	o.ctrl.SetStatus(StatusWaiting(alloc.Port))

	o.handle = o.opts.Supervisor.Launch(ctx, o.opts.Network, o.opts.DataDir, alloc.Port, func(err error) {
		o.Post(ServiceStopped{Err: err})
	})
	o.opts.Probe.Start(ctx, o.opts.Host, alloc.Port, o.opts.InitialTimeout, func(url string) {
		o.Post(Alive{URL: url})
	})
}

// watch turns a window's channels into events tagged with its generation.
func (o *Orchestrator) watch(gen uint64, w window.Window) {
	go func() {
		select {
		case <-w.Ready():
			o.Post(WindowReady{Gen: gen})
		case <-w.Done():
		case <-o.done:
			return
		}
		select {
		case <-w.Done():
			o.Post(WindowClosed{Gen: gen})
		case <-o.done:
		}
	}()
}

func (o *Orchestrator) waitService() {
	if o.handle == nil {
		return
	}
	select {
	case <-o.handle.Done():
	case <-time.After(ShutdownTimeout):
		o.log.Warnw("Service did not stop in time")
	}
}
