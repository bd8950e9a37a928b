package window

import (
	"errors"
	"sync"

	"github.com/zserge/lorca"
)

// LorcaOptions sizes Chrome app windows.
type LorcaOptions struct {
	Width   int
	Height  int
	Args    []string
	Profile string
}

// LorcaWindow is a Chrome app window driven over the DevTools protocol.
// Chrome cannot hide a window, so a fresh window opens on the loading page and
// Show only restores it.
type LorcaWindow struct {
	ui    lorca.UI
	ready chan struct{}
	once  sync.Once
}

// NewLorcaFactory returns a Factory backed by lorca.
func NewLorcaFactory(opts LorcaOptions) Factory {
	return func() (Window, error) {
		if lorca.LocateChrome() == "" {
			return nil, errors.New("chrome or chromium is not installed")
		}
		ui, err := lorca.New(LoadingPage(), opts.Profile, opts.Width, opts.Height, opts.Args...)
		if err != nil {
			return nil, err
		}
		w := &LorcaWindow{ui: ui, ready: make(chan struct{})}
		close(w.ready)
		return w, nil
	}
}

func (w *LorcaWindow) Load(url string) error { return w.ui.Load(url) }

func (w *LorcaWindow) Show() error {
	return w.ui.SetBounds(lorca.Bounds{WindowState: lorca.WindowStateNormal})
}

func (w *LorcaWindow) Minimize() error {
	return w.ui.SetBounds(lorca.Bounds{WindowState: lorca.WindowStateMinimized})
}

func (w *LorcaWindow) Close() error {
	var err error
	w.once.Do(func() { err = w.ui.Close() })
	return err
}

func (w *LorcaWindow) Ready() <-chan struct{} { return w.ready }

func (w *LorcaWindow) Done() <-chan struct{} { return w.ui.Done() }
