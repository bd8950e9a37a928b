package orchestrator

import (
	"errors"
	"fmt"

	apperrors "github.com/cfdshell/cfdshell/internal/errors"
)

// Tray status lines.
const (
	StatusStarting = "Starting..."
	StatusStopped  = "Service stopped"
)

// StatusWaiting is shown while the probe waits for the service.
func StatusWaiting(port int) string {
	return fmt.Sprintf("Waiting for service on port %d", port)
}

// StatusRunning is shown once the service answered.
func StatusRunning(port int) string {
	return fmt.Sprintf("Running on port %d", port)
}

// StatusFailed is shown when bootstrap cannot continue.
func StatusFailed(err error) string {
	if errors.Is(err, apperrors.ErrPortExhausted) {
		return "Failed: no free port"
	}
	return "Failed to start"
}
