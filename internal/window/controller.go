package window

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/cfdshell/cfdshell/internal/errors"
	"github.com/cfdshell/cfdshell/internal/metrics"
)

// Config wires a Controller.
type Config struct {
	Policy         Policy
	StartMinimized bool
	NewWindow      Factory
	NewTray        TrayFactory
	Platform       Platform
	// Watch is called after every window creation with the generation the
	// window's events must carry.
	Watch   func(gen uint64, w Window)
	Logger  *zap.SugaredLogger
	Metrics *metrics.Metrics
}

// Controller drives the window and tray state machine.
type Controller struct {
	cfg Config
	log *zap.SugaredLogger
	m   *metrics.Metrics

	state    State
	win      Window
	gen      uint64
	tray     Tray
	status   string
	url      string
	errMsg   string
	quitting bool

	// requested is set once Show ran; start-minimized only applies before.
	requested   bool
	showOnReady bool
}

// NewController creates a controller with no window and no tray.
func NewController(cfg Config) (*Controller, error) {
	if cfg.NewWindow == nil {
		return nil, errors.New("window factory is required")
	}
	if cfg.Platform == nil {
		return nil, errors.New("platform is required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &Controller{cfg: cfg, log: log, m: m}, nil
}

// State returns the current window state.
func (c *Controller) State() State { return c.state }

// Generation returns the generation of the current window instance.
func (c *Controller) Generation() uint64 { return c.gen }

// TrayPresent reports whether the tray icon was created.
func (c *Controller) TrayPresent() bool { return c.tray != nil }

// Quitting reports whether Quit was requested.
func (c *Controller) Quitting() bool { return c.quitting }

// URL returns the UI address once the service is alive.
func (c *Controller) URL() string { return c.url }

// Show creates the window if there is none, otherwise brings the existing
// one to the front. Both startup and tray "Show App" go through here; only
// the first call honours start-minimized.
func (c *Controller) Show() error {
	if c.quitting {
		return nil
	}
	startup := !c.requested
	c.requested = true
	if c.state.Exists() {
		return c.show()
	}

	// The tray comes first so "Show App" can retry a failed creation.
	if err := c.ensureTray(); err != nil {
		c.log.Warnw("Tray unavailable", "error", err)
	}

	w, err := c.cfg.NewWindow()
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	c.gen++
	c.win = w
	c.showOnReady = !(startup && c.cfg.StartMinimized)
	c.setState(CreatedHidden)

	switch c.cfg.Policy {
	case PolicyTaskbar:
		c.cfg.Platform.SetTaskbarVisible(true)
	case PolicyDock:
		c.cfg.Platform.SetDockVisible(true)
	}

	switch {
	case c.url != "":
		c.navigate(c.url)
	case c.errMsg != "":
		c.navigate(ErrorPage(c.errMsg))
	}

	if c.cfg.Watch != nil {
		c.cfg.Watch(c.gen, w)
	}
	return nil
}

// Ready handles the window reporting it can be shown.
func (c *Controller) Ready(gen uint64) {
	if c.stale(gen) || c.state != CreatedHidden {
		return
	}
	if !c.showOnReady {
		if err := c.win.Minimize(); err != nil {
			c.log.Warnw("Failed to minimize window", "error", err)
		}
		c.log.Debugw("Window started minimized", "generation", gen)
		return
	}
	if err := c.show(); err != nil {
		c.log.Warnw("Failed to show window", "error", err)
	}
}

// Closed handles the window going away and applies the close policy.
func (c *Controller) Closed(gen uint64) {
	if c.stale(gen) || !c.state.Exists() {
		return
	}
	// Releases the backend (lorca removes its temporary profile here).
	if err := c.win.Close(); err != nil {
		c.log.Debugw("Window release", "error", err)
	}
	c.win = nil
	c.setState(Closed)

	switch c.cfg.Policy {
	case PolicyTaskbar:
		c.cfg.Platform.SetTaskbarVisible(false)
		c.log.Infow("Window closed, still running in the tray")
	case PolicyDock:
		c.cfg.Platform.SetDockVisible(false)
		c.log.Infow("Window closed, still running in the tray")
	default:
		c.log.Infow("Last window closed, quitting")
		c.Quit()
	}
}

// Alive records the UI address and loads it into the current window.
func (c *Controller) Alive(url string) {
	c.url = url
	c.errMsg = ""
	if c.state.Exists() {
		c.navigate(url)
	}
}

// ShowError replaces the window contents with an error page until the
// service becomes alive.
func (c *Controller) ShowError(msg string) {
	c.errMsg = msg
	if c.url == "" && c.state.Exists() {
		c.navigate(ErrorPage(msg))
	}
}

// SetStatus updates the tray status line. The latest status is applied when
// the tray is created later.
func (c *Controller) SetStatus(status string) {
	c.status = status
	if c.tray != nil {
		c.tray.SetStatus(status)
	}
}

// SetStartMinimized changes the flag. It only matters before the first Show.
func (c *Controller) SetStartMinimized(v bool) {
	c.cfg.StartMinimized = v
}

// Quit closes the window and exits the application regardless of policy.
func (c *Controller) Quit() {
	if c.quitting {
		return
	}
	c.quitting = true
	if c.win != nil {
		if err := c.win.Close(); err != nil {
			c.log.Debugw("Window close on quit", "error", err)
		}
		c.win = nil
		c.setState(Closed)
	}
	c.cfg.Platform.Quit()
}

func (c *Controller) show() error {
	if err := c.win.Show(); err != nil {
		return err
	}
	c.setState(CreatedVisible)
	return nil
}

func (c *Controller) ensureTray() error {
	if c.tray != nil || c.cfg.NewTray == nil {
		return nil
	}
	t, err := c.cfg.NewTray()
	if err != nil {
		return err
	}
	c.tray = t
	if c.status != "" {
		t.SetStatus(c.status)
	}
	return nil
}

func (c *Controller) navigate(target string) {
	if err := c.win.Load(target); err != nil {
		err = apperrors.New(apperrors.CodeNavigation, "window.Load", "failed to load UI", err)
		c.log.Errorw("Navigation failed", "error", err)
		c.m.Navigations.WithLabelValues("error").Inc()
		return
	}
	c.m.Navigations.WithLabelValues("ok").Inc()
}

func (c *Controller) stale(gen uint64) bool {
	if c.quitting || gen != c.gen {
		c.log.Debugw("Ignoring window event", "generation", gen, "current", c.gen)
		return true
	}
	return false
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.log.Debugw("Window state", "from", c.state, "to", s)
	c.state = s
	c.m.WindowTransitions.WithLabelValues(s.String()).Inc()
}
