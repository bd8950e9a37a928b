package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cfdshell/cfdshell/internal/config"
	apperrors "github.com/cfdshell/cfdshell/internal/errors"
	"github.com/cfdshell/cfdshell/internal/logging"
	"github.com/cfdshell/cfdshell/internal/metrics"
	"github.com/cfdshell/cfdshell/internal/models"
	"github.com/cfdshell/cfdshell/internal/orchestrator"
	"github.com/cfdshell/cfdshell/internal/portalloc"
	"github.com/cfdshell/cfdshell/internal/probe"
	"github.com/cfdshell/cfdshell/internal/supervisor"
	"github.com/cfdshell/cfdshell/internal/tray"
	"github.com/cfdshell/cfdshell/internal/window"
)

type shellFlags struct {
	dev            bool
	startMinimized bool
	port           int
	serviceBinary  string
	logLevel       string
	metricsAddr    string
}

var runFlags shellFlags

func registerRunFlags(c *cobra.Command) {
	f := c.Flags()
	f.BoolVar(&runFlags.dev, "dev", false, "Run against the development data directory and testnet")
	f.BoolVar(&runFlags.startMinimized, "start-minimized", false, "Minimize the window once it is ready")
	f.IntVar(&runFlags.port, "port", 0, "Preferred service port (default from settings)")
	f.StringVar(&runFlags.serviceBinary, "service-binary", "", "Path to the taker binary")
	f.StringVar(&runFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&runFlags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
}

func runShell(cmd *cobra.Command, args []string) error {
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to create global directory: %w", err)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, settings)

	env, err := config.ResolveEnvironment(config.IsPackaged(runFlags.dev))
	if err != nil {
		return err
	}
	if err := env.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	logger, err := newLogger(env, settings)
	if err != nil {
		return err
	}
	defer logger.Close()

	runID := uuid.NewString()
	logger.Logger = logger.Logger.With(zap.String("run_id", runID))
	log := logger.Named("shell")

	session, err := claimSession(runID, env)
	if err != nil {
		return err
	}
	defer func() {
		if err := config.RemoveOwnSession(runID); err != nil {
			log.Warnw("Failed to remove session file", "error", err)
		}
	}()

	log.Infow("Starting cfdshell", "packaged", env.Packaged, "network", env.Network, "data_dir", env.DataDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if settings.Metrics.Address != "" {
		go func() {
			if err := m.Serve(ctx, settings.Metrics.Address, logger.Named("metrics")); err != nil {
				log.Warnw("Metrics server stopped", "error", err)
			}
		}()
	}

	binary, err := supervisor.FindBinary(settings.Service.Binary)
	if err != nil {
		log.Errorw("Service binary not found", "error", err)
		binary = supervisor.ServiceBinaryName
	}

	profileDir, err := config.GlobalUIProfileDir()
	if err != nil {
		return err
	}

	var o *orchestrator.Orchestrator
	o, err = orchestrator.New(orchestrator.Options{
		Host:           portalloc.DefaultHost,
		PreferredPort:  settings.Service.PreferredPort,
		PortRetries:    settings.Service.PortRetries,
		InitialTimeout: settings.Probe.InitialTimeout,
		Network:        env.Network,
		DataDir:        env.DataDir,
		Allocator: portalloc.New(
			portalloc.WithLogger(logger.Named("portalloc")),
			portalloc.WithMetrics(m),
		),
		Supervisor: supervisor.New(&supervisor.ProcessLauncher{
			Binary: binary,
			Logger: logger.Named("service"),
		}, logger.Named("supervisor"), m),
		Probe: probe.New(probe.Options{
			Checker: &probe.HTTPChecker{Client: probe.NewHTTPClient(settings.Probe.RequestTimeout)},
			Logger:  logger.Named("probe"),
			Metrics: m,
		}),
		NewWindow: window.NewLorcaFactory(window.LorcaOptions{
			Width:   settings.Window.Width,
			Height:  settings.Window.Height,
			Profile: profileDir,
		}),
		NewTray: func(showApp, quit func()) (window.Tray, error) {
			t, err := tray.Install(orchestrator.StatusStarting, tray.Actions{ShowApp: showApp, Quit: quit}, logger.Named("tray"))
			if err != nil {
				return nil, err
			}
			return t, nil
		},
		Platform:       &window.DesktopPlatform{Logger: logger.Named("window"), OnQuit: tray.Quit},
		Policy:         window.DefaultPolicy(),
		StartMinimized: settings.Window.StartMinimized,
		OnPortAllocated: func(a portalloc.Allocation) {
			session.Port = a.Port
			if err := config.SaveSession(session); err != nil {
				log.Warnw("Failed to write session file", "error", err)
			}
		},
		OnSettingsChanged: func(s *models.Settings) {
			if s.Log.Level != logger.Level().String() {
				log.Infow("Log level changed", "level", s.Log.Level)
				logger.SetLevel(s.Log.Level)
			}
		},
		Logger:  logger.Named("orchestrator"),
		Metrics: m,
	})
	if err != nil {
		return err
	}

	var runErr error
	runDone := make(chan struct{})

	onReady := func() {
		watcher, err := config.NewSettingsWatcher(logger.Named("config"), withFlagOverrides(cmd, func(s *models.Settings) {
			o.Post(orchestrator.SettingsChanged{Settings: s})
		}))
		if err != nil {
			log.Warnw("Settings hot reload disabled", "error", err)
		} else if err := watcher.Start(); err != nil {
			log.Warnw("Settings hot reload disabled", "error", err)
			watcher.Stop()
			watcher = nil
		}

		go func() {
			defer close(runDone)
			if watcher != nil {
				defer watcher.Stop()
			}
			runErr = o.Run(ctx)
			tray.Quit()
		}()
	}

	onExit := func() {
		stop()
		<-runDone
		log.Infow("cfdshell stopped")
	}

	// This blocks the main goroutine until the tray exits.
	tray.Run(onReady, onExit)
	return runErr
}

func newLogger(env config.Environment, settings *models.Settings) (*logging.Logger, error) {
	opts := logging.Options{
		Level:       settings.Log.Level,
		Development: !env.Packaged,
	}
	if env.Packaged {
		if err := config.EnsureGlobalLogsDir(); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
		file, err := config.GlobalLogFile()
		if err != nil {
			return nil, err
		}
		opts.File = file
	}
	return logging.New(opts)
}

// claimSession refuses to start while another shell owns the session file,
// then records this run with port 0 until a port is allocated.
func claimSession(runID string, env config.Environment) (*models.SessionInfo, error) {
	running, info, err := config.IsShellRunning()
	if err != nil {
		return nil, fmt.Errorf("failed to check shell status: %w", err)
	}
	if running {
		return nil, alreadyRunning(info)
	}

	session := models.NewSessionInfo(runID, portalloc.DefaultHost, 0, os.Getpid(), env.Network, env.DataDir)
	if err := config.SaveSession(session); err != nil {
		return nil, fmt.Errorf("failed to write session file: %w", err)
	}

	// A shell started at the same moment may have replaced the file.
	current, err := config.LoadSession()
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	if current != nil && current.RunID != runID {
		return nil, alreadyRunning(current)
	}
	return session, nil
}

func alreadyRunning(info *models.SessionInfo) error {
	return apperrors.New(apperrors.CodeAlreadyRunning, "cli.run",
		fmt.Sprintf("cfdshell is already running (PID %d, port %d)", info.PID, info.Port), nil)
}

// withFlagOverrides keeps explicit flags in force across settings reloads.
func withFlagOverrides(cmd *cobra.Command, next func(*models.Settings)) func(*models.Settings) {
	return func(s *models.Settings) {
		applyFlagOverrides(cmd, s)
		next(s)
	}
}

// applyFlagOverrides copies explicitly set flags over the loaded settings.
func applyFlagOverrides(cmd *cobra.Command, s *models.Settings) {
	flags := cmd.Flags()
	if flags.Changed("start-minimized") {
		s.Window.StartMinimized = runFlags.startMinimized
	}
	if flags.Changed("port") {
		s.Service.PreferredPort = runFlags.port
	}
	if flags.Changed("service-binary") {
		s.Service.Binary = runFlags.serviceBinary
	}
	if flags.Changed("log-level") {
		s.Log.Level = runFlags.logLevel
	}
	if flags.Changed("metrics-addr") {
		s.Metrics.Address = runFlags.metricsAddr
	}
}
