// Package window owns the single application window and the tray icon.
//
// The Controller is a plain state machine. It is not safe for concurrent use:
// one dispatcher goroutine drives it, and window backends report Ready and
// Done through channels that the dispatcher turns into events.
package window

// Window is one native window instance. A closed Window is never reused.
type Window interface {
	Load(url string) error
	Show() error
	Minimize() error
	Close() error
	// Ready is closed once the window can be shown.
	Ready() <-chan struct{}
	// Done is closed when the window is gone.
	Done() <-chan struct{}
}

// Factory creates a window.
type Factory func() (Window, error)

// Tray is the part of the tray icon the controller drives.
type Tray interface {
	SetStatus(status string)
}

// TrayFactory creates the tray icon.
type TrayFactory func() (Tray, error)

// Platform applies OS-level presentation changes.
type Platform interface {
	SetTaskbarVisible(visible bool)
	SetDockVisible(visible bool)
	Quit()
}
