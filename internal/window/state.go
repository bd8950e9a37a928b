package window

import "runtime"

// State is the lifecycle state of the main window.
type State int

const (
	Absent State = iota
	CreatedHidden
	CreatedVisible
	Closed
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case CreatedHidden:
		return "created_hidden"
	case CreatedVisible:
		return "created_visible"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Exists reports whether a live window backs the state.
func (s State) Exists() bool {
	return s == CreatedHidden || s == CreatedVisible
}

// Policy decides what closing the last window does.
type Policy int

const (
	// PolicyQuit quits the application.
	PolicyQuit Policy = iota
	// PolicyTaskbar keeps running and drops out of the taskbar.
	PolicyTaskbar
	// PolicyDock keeps running and hides the dock icon.
	PolicyDock
)

func (p Policy) String() string {
	switch p {
	case PolicyTaskbar:
		return "taskbar"
	case PolicyDock:
		return "dock"
	default:
		return "quit"
	}
}

// PolicyFor returns the close policy for a GOOS value.
func PolicyFor(goos string) Policy {
	switch goos {
	case "windows":
		return PolicyTaskbar
	case "darwin":
		return PolicyDock
	default:
		return PolicyQuit
	}
}

// DefaultPolicy is the close policy of the running platform.
func DefaultPolicy() Policy {
	return PolicyFor(runtime.GOOS)
}
