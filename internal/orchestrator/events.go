package orchestrator

import (
	"github.com/cfdshell/cfdshell/internal/models"
	"github.com/cfdshell/cfdshell/internal/portalloc"
)

// Event is anything the dispatcher handles.
type Event interface {
	event()
}

// PortAllocated carries the port fixed for this run.
type PortAllocated struct {
	Allocation portalloc.Allocation
}

// BootstrapFailed reports an error that ends the bootstrap sequence.
type BootstrapFailed struct {
	Err error
}

// ServiceStopped reports the service's terminal outcome.
type ServiceStopped struct {
	Err error
}

// Alive reports the service answered at URL.
type Alive struct {
	URL string
}

// WindowReady is posted when the window with generation Gen can be shown.
type WindowReady struct {
	Gen uint64
}

// WindowClosed is posted when the window with generation Gen is gone.
type WindowClosed struct {
	Gen uint64
}

// TrayAction is a tray menu click.
type TrayAction struct {
	Action Action
}

// Action identifies a tray menu item.
type Action int

const (
	ActionShowApp Action = iota
	ActionQuit
)

func (a Action) String() string {
	if a == ActionQuit {
		return "quit"
	}
	return "show_app"
}

// SettingsChanged carries reloaded settings.
type SettingsChanged struct {
	Settings *models.Settings
}

func (PortAllocated) event()   {}
func (BootstrapFailed) event() {}
func (ServiceStopped) event()  {}
func (Alive) event()           {}
func (WindowReady) event()     {}
func (WindowClosed) event()    {}
func (TrayAction) event()      {}
func (SettingsChanged) event() {}
