package models

import "time"

// ServiceConfig holds settings for launching the trading daemon.
type ServiceConfig struct {
	Binary        string `yaml:"binary"` // empty = lookup "taker" in PATH and next to the shell
	PreferredPort int    `yaml:"preferred_port"`
	PortRetries   int    `yaml:"port_retries"`
}

// ProbeConfig holds settings for the liveness probe.
type ProbeConfig struct {
	InitialTimeout time.Duration `yaml:"initial_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// WindowConfig holds settings for the main window.
type WindowConfig struct {
	StartMinimized bool `yaml:"start_minimized"`
	Width          int  `yaml:"width"`
	Height         int  `yaml:"height"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
}

// MetricsConfig holds settings for the optional Prometheus endpoint.
type MetricsConfig struct {
	Address string `yaml:"address"` // empty disables the endpoint
}

// Settings represents global shell settings.
// This corresponds to ~/.cfdshell/settings.yaml.
type Settings struct {
	Version int           `yaml:"version"`
	Service ServiceConfig `yaml:"service"`
	Probe   ProbeConfig   `yaml:"probe"`
	Window  WindowConfig  `yaml:"window"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Service: ServiceConfig{
			Binary:        "",
			PreferredPort: 7113,
			PortRetries:   3,
		},
		Probe: ProbeConfig{
			InitialTimeout: 100 * time.Millisecond,
			RequestTimeout: 2 * time.Second,
		},
		Window: WindowConfig{
			StartMinimized: false,
			Width:          1280,
			Height:         850,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills zero values left by a partial settings file.
func (s *Settings) ApplyDefaults() {
	d := NewSettings()
	if s.Version == 0 {
		s.Version = d.Version
	}
	if s.Service.PreferredPort == 0 {
		s.Service.PreferredPort = d.Service.PreferredPort
	}
	if s.Service.PortRetries < 0 {
		s.Service.PortRetries = 0
	}
	if s.Probe.InitialTimeout <= 0 {
		s.Probe.InitialTimeout = d.Probe.InitialTimeout
	}
	if s.Probe.RequestTimeout <= 0 {
		s.Probe.RequestTimeout = d.Probe.RequestTimeout
	}
	if s.Window.Width <= 0 {
		s.Window.Width = d.Window.Width
	}
	if s.Window.Height <= 0 {
		s.Window.Height = d.Window.Height
	}
	if s.Log.Level == "" {
		s.Log.Level = d.Log.Level
	}
}
