package models

import "time"

// SessionInfo describes the running shell and the service port it owns.
// This corresponds to ~/.cfdshell/session.yaml.
type SessionInfo struct {
	Version   int       `yaml:"version"`
	RunID     string    `yaml:"run_id"`
	PID       int       `yaml:"pid"`
	Host      string    `yaml:"host"`
	Port      int       `yaml:"port"`
	Network   string    `yaml:"network"`
	DataDir   string    `yaml:"data_dir"`
	StartedAt time.Time `yaml:"started_at"`
}

// NewSessionInfo creates session info for the current run.
func NewSessionInfo(runID, host string, port, pid int, network, dataDir string) *SessionInfo {
	return &SessionInfo{
		Version:   1,
		RunID:     runID,
		PID:       pid,
		Host:      host,
		Port:      port,
		Network:   network,
		DataDir:   dataDir,
		StartedAt: time.Now().UTC(),
	}
}
