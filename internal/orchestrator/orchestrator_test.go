package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cfdshell/cfdshell/internal/errors"
	"github.com/cfdshell/cfdshell/internal/models"
	"github.com/cfdshell/cfdshell/internal/portalloc"
	"github.com/cfdshell/cfdshell/internal/probe"
	"github.com/cfdshell/cfdshell/internal/supervisor"
	"github.com/cfdshell/cfdshell/internal/window"
)

const waitFor = 5 * time.Second

type fakeWindow struct {
	mu     sync.Mutex
	loads  []string
	loaded chan string
	ready  chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newFakeWindow() *fakeWindow {
	w := &fakeWindow{
		loaded: make(chan string, 16),
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
	close(w.ready)
	return w
}

func (w *fakeWindow) Load(url string) error {
	w.mu.Lock()
	w.loads = append(w.loads, url)
	w.mu.Unlock()
	w.loaded <- url
	return nil
}
func (w *fakeWindow) Show() error            { return nil }
func (w *fakeWindow) Minimize() error        { return nil }
func (w *fakeWindow) Close() error           { w.once.Do(func() { close(w.done) }); return nil }
func (w *fakeWindow) Ready() <-chan struct{} { return w.ready }
func (w *fakeWindow) Done() <-chan struct{}  { return w.done }

func (w *fakeWindow) Loads() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.loads...)
}

type fakeTray struct {
	mu       sync.Mutex
	statuses []string
	showApp  func()
	quit     func()
}

func (t *fakeTray) SetStatus(s string) {
	t.mu.Lock()
	t.statuses = append(t.statuses, s)
	t.mu.Unlock()
}

func (t *fakeTray) Statuses() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.statuses...)
}

type fakePlatform struct{ quits atomic.Int32 }

func (p *fakePlatform) SetTaskbarVisible(bool) {}
func (p *fakePlatform) SetDockVisible(bool)    {}
func (p *fakePlatform) Quit()                  { p.quits.Add(1) }

type allocatorFunc func(preferred, maxRetries int) (portalloc.Allocation, error)

func (f allocatorFunc) Allocate(preferred, maxRetries int) (portalloc.Allocation, error) {
	return f(preferred, maxRetries)
}

type fixture struct {
	opts     Options
	windows  chan *fakeWindow
	tray     *fakeTray
	platform *fakePlatform
	checks   atomic.Int32
	launched chan int
	stopped  chan struct{}
}

// newFixture wires an orchestrator whose service answers on attempt aliveOn
// (0 = never) and runs until its context is cancelled.
func newFixture(aliveOn int32, policy window.Policy) *fixture {
	f := &fixture{
		windows:  make(chan *fakeWindow, 4),
		tray:     &fakeTray{},
		platform: &fakePlatform{},
		launched: make(chan int, 1),
		stopped:  make(chan struct{}),
	}

	launcher := supervisor.LauncherFunc(func(ctx context.Context, _ string, _ string, port int) error {
		f.launched <- port
		<-ctx.Done()
		close(f.stopped)
		return ctx.Err()
	})
	checker := probe.CheckerFunc(func(context.Context, string) error {
		n := f.checks.Add(1)
		if aliveOn > 0 && n >= aliveOn {
			return nil
		}
		return errors.New("connection refused")
	})

	f.opts = Options{
		PreferredPort:  portalloc.DefaultPort,
		PortRetries:    portalloc.DefaultRetries,
		InitialTimeout: time.Millisecond,
		Network:        "testnet",
		DataDir:        "/tmp/cfdshell-test",
		Allocator: allocatorFunc(func(preferred, _ int) (portalloc.Allocation, error) {
			return portalloc.Allocation{Port: preferred, Attempts: 1}, nil
		}),
		Supervisor: supervisor.New(launcher, nil, nil),
		Probe:      probe.New(probe.Options{Checker: checker}),
		NewWindow: func() (window.Window, error) {
			w := newFakeWindow()
			f.windows <- w
			return w, nil
		},
		NewTray: func(showApp, quit func()) (window.Tray, error) {
			f.tray.showApp, f.tray.quit = showApp, quit
			return f.tray, nil
		},
		Platform: f.platform,
		Policy:   policy,
	}
	return f
}

func (f *fixture) start(t *testing.T, ctx context.Context) (*Orchestrator, chan error) {
	t.Helper()
	o, err := New(f.opts)
	require.NoError(t, err)
	errCh := make(chan error, 1)
	go func() { errCh <- o.Run(ctx) }()
	return o, errCh
}

func (f *fixture) nextWindow(t *testing.T) *fakeWindow {
	t.Helper()
	select {
	case w := <-f.windows:
		return w
	case <-time.After(waitFor):
		t.Fatal("no window created")
		return nil
	}
}

func expectLoad(t *testing.T, w *fakeWindow) string {
	t.Helper()
	select {
	case url := <-w.loaded:
		return url
	case <-time.After(waitFor):
		t.Fatal("nothing loaded into the window")
		return ""
	}
}

func waitRun(t *testing.T, errCh chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(waitFor):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestRun_AliveOnFourthAttemptLoadsOnce(t *testing.T) {
	f := newFixture(4, window.PolicyQuit)
	var allocated portalloc.Allocation
	f.opts.OnPortAllocated = func(a portalloc.Allocation) { allocated = a }

	o, errCh := f.start(t, context.Background())
	w := f.nextWindow(t)

	assert.Equal(t, "http://127.0.0.1:7113/", expectLoad(t, w))
	assert.Equal(t, 7113, <-f.launched)

	f.tray.quit()
	require.NoError(t, waitRun(t, errCh))

	assert.Equal(t, []string{"http://127.0.0.1:7113/"}, w.Loads())
	assert.EqualValues(t, 4, f.checks.Load())
	assert.Equal(t, 7113, allocated.Port)
	assert.Equal(t, 7113, o.Port())
	assert.EqualValues(t, 1, f.platform.quits.Load())
	assert.Contains(t, f.tray.Statuses(), StatusRunning(7113))

	select {
	case <-f.stopped:
	default:
		t.Fatal("service was not stopped on quit")
	}
}

func TestRun_NeverReachableNeverLoads(t *testing.T) {
	f := newFixture(0, window.PolicyQuit)
	_, errCh := f.start(t, context.Background())
	w := f.nextWindow(t)
	<-f.launched

	require.Eventually(t, func() bool { return f.checks.Load() >= 5 }, waitFor, time.Millisecond)
	f.tray.quit()
	require.NoError(t, waitRun(t, errCh))

	assert.Empty(t, w.Loads())
	assert.Contains(t, f.tray.Statuses(), StatusWaiting(7113))
}

func TestRun_PortExhaustedShowsErrorPage(t *testing.T) {
	f := newFixture(1, window.PolicyTaskbar)
	exhausted := apperrors.New(apperrors.CodePortExhausted, "portalloc.Allocate", "no free port after 4 attempts", errors.New("address already in use"))
	f.opts.Allocator = allocatorFunc(func(int, int) (portalloc.Allocation, error) {
		return portalloc.Allocation{}, exhausted
	})

	_, errCh := f.start(t, context.Background())
	w := f.nextWindow(t)

	page := expectLoad(t, w)
	assert.True(t, strings.HasPrefix(page, "data:text/html,"))

	f.tray.quit()
	err := waitRun(t, errCh)
	assert.ErrorIs(t, err, apperrors.ErrPortExhausted)
	assert.Zero(t, f.checks.Load(), "probe must not start")
	assert.Empty(t, f.launched)
	assert.Contains(t, f.tray.Statuses(), "Failed: no free port")
}

func TestRun_WindowCloseQuitsOnQuitPolicy(t *testing.T) {
	f := newFixture(1, window.PolicyQuit)
	_, errCh := f.start(t, context.Background())
	w := f.nextWindow(t)
	expectLoad(t, w)

	w.Close()

	require.NoError(t, waitRun(t, errCh))
	assert.EqualValues(t, 1, f.platform.quits.Load())
}

func TestRun_WindowCloseKeepsRunningOnTaskbarPolicy(t *testing.T) {
	f := newFixture(1, window.PolicyTaskbar)
	_, errCh := f.start(t, context.Background())
	first := f.nextWindow(t)
	url := expectLoad(t, first)

	first.Close()
	f.tray.showApp()

	second := f.nextWindow(t)
	assert.Equal(t, url, expectLoad(t, second))
	assert.Zero(t, f.platform.quits.Load())

	f.tray.quit()
	require.NoError(t, waitRun(t, errCh))
	assert.EqualValues(t, 1, f.platform.quits.Load())
}

func TestRun_ContextCancelQuits(t *testing.T) {
	f := newFixture(0, window.PolicyDock)
	ctx, cancel := context.WithCancel(context.Background())
	_, errCh := f.start(t, ctx)
	f.nextWindow(t)
	<-f.launched

	cancel()

	require.NoError(t, waitRun(t, errCh))
	assert.EqualValues(t, 1, f.platform.quits.Load())
}

func TestRun_ServiceFailureIsNotFatal(t *testing.T) {
	f := newFixture(0, window.PolicyTaskbar)
	f.opts.Supervisor = supervisor.New(supervisor.LauncherFunc(func(context.Context, string, string, int) error {
		return errors.New("exit status 1")
	}), nil, nil)

	_, errCh := f.start(t, context.Background())
	f.nextWindow(t)

	require.Eventually(t, func() bool {
		for _, s := range f.tray.Statuses() {
			if s == StatusStopped {
				return true
			}
		}
		return false
	}, waitFor, time.Millisecond)

	f.tray.quit()
	assert.NoError(t, waitRun(t, errCh))
}

func TestRun_SettingsChanged(t *testing.T) {
	f := newFixture(0, window.PolicyQuit)
	got := make(chan *models.Settings, 1)
	f.opts.OnSettingsChanged = func(s *models.Settings) { got <- s }

	o, errCh := f.start(t, context.Background())
	f.nextWindow(t)

	s := models.NewSettings()
	s.Log.Level = "debug"
	o.Post(SettingsChanged{Settings: s})

	select {
	case received := <-got:
		assert.Equal(t, "debug", received.Log.Level)
	case <-time.After(waitFor):
		t.Fatal("settings callback not called")
	}

	f.tray.quit()
	require.NoError(t, waitRun(t, errCh))
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestStatusFailed(t *testing.T) {
	assert.Equal(t, "Failed: no free port", StatusFailed(apperrors.ErrPortExhausted))
	assert.Equal(t, "Failed to start", StatusFailed(errors.New("boom")))
}
