package config

import (
	"os"
	"syscall"

	"github.com/cfdshell/cfdshell/internal/models"
)

// LoadSession loads the session info from ~/.cfdshell/session.yaml.
// Returns nil if the file doesn't exist.
func LoadSession() (*models.SessionInfo, error) {
	path, err := GlobalSessionFile()
	if err != nil {
		return nil, err
	}

	if !FileExists(path) {
		return nil, nil
	}

	var info models.SessionInfo
	if err := LoadYAML(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveSession saves the session info to ~/.cfdshell/session.yaml.
func SaveSession(info *models.SessionInfo) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}

	path, err := GlobalSessionFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, info)
}

// RemoveSession removes the session.yaml file.
func RemoveSession() error {
	path, err := GlobalSessionFile()
	if err != nil {
		return err
	}

	if !FileExists(path) {
		return nil
	}
	return os.Remove(path)
}

// RemoveOwnSession removes session.yaml only if it was written by runID.
func RemoveOwnSession(runID string) error {
	info, err := LoadSession()
	if err != nil || info == nil {
		return err
	}
	if info.RunID != runID {
		return nil
	}
	return RemoveSession()
}

// IsShellRunning checks if another shell process still owns the session.
// Returns true if session.yaml exists and the PID is alive.
func IsShellRunning() (bool, *models.SessionInfo, error) {
	info, err := LoadSession()
	if err != nil {
		return false, nil, err
	}
	if info == nil {
		return false, nil, nil
	}

	if info.PID == os.Getpid() {
		return true, info, nil
	}

	process, err := os.FindProcess(info.PID)
	if err != nil {
		// On Unix, FindProcess always succeeds
		return false, info, nil
	}

	// Send signal 0 to check if process exists
	if err := process.Signal(syscall.Signal(0)); err != nil {
		// Process doesn't exist, clean up stale file
		_ = RemoveSession()
		return false, info, nil
	}

	return true, info, nil
}
