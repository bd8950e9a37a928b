// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName is used for per-user directories.
	AppName = "cfdshell"

	// GlobalDirName is the name of the global shell directory.
	GlobalDirName = ".cfdshell"

	// LogsDirName is the name of the logs directory.
	LogsDirName = "logs"

	// DevDirName holds data for unpackaged (development) runs.
	DevDirName = "dev"

	// UIProfileDirName holds the browser profile of the main window.
	UIProfileDirName = "ui-profile"

	// HomeEnv overrides the global directory location.
	HomeEnv = "CFDSHELL_HOME"
)

// File names
const (
	SessionFileName  = "session.yaml"
	SettingsFileName = "settings.yaml"
	LogFileName      = "shell.log"
)

// GlobalDir returns the path to the global shell directory (~/.cfdshell/).
func GlobalDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalSessionFile returns the path to the session.yaml file.
func GlobalSessionFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SessionFileName), nil
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// GlobalLogsDir returns the path to the logs directory.
func GlobalLogsDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogsDirName), nil
}

// GlobalLogFile returns the path to the rotating shell log.
func GlobalLogFile() (string, error) {
	dir, err := GlobalLogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogFileName), nil
}

// GlobalUIProfileDir returns the browser profile directory. It outlives
// individual windows so UI local storage survives recreation.
func GlobalUIProfileDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, UIProfileDirName), nil
}

// EnsureGlobalDir creates the global shell directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureGlobalLogsDir creates the global logs directory if it doesn't exist.
func EnsureGlobalLogsDir() error {
	dir, err := GlobalLogsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
