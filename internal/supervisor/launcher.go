package supervisor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ServiceBinaryName is the trading daemon executable.
const ServiceBinaryName = "taker"

// stopGrace is how long the service gets to exit after SIGTERM.
const stopGrace = 5 * time.Second

// Launcher runs the service until it stops.
type Launcher interface {
	Run(ctx context.Context, network, dataDir string, port int) error
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context, network, dataDir string, port int) error

// Run calls f.
func (f LauncherFunc) Run(ctx context.Context, network, dataDir string, port int) error {
	return f(ctx, network, dataDir, port)
}

// Args builds the service command line.
func Args(network, dataDir string, port int) []string {
	return []string{
		"--network", network,
		"--data-dir", dataDir,
		"--http-port", strconv.Itoa(port),
	}
}

// ProcessLauncher runs the service binary as a child process whose working
// directory is the data directory. Its output is re-logged line by line.
type ProcessLauncher struct {
	Binary string
	Logger *zap.SugaredLogger
}

// Run starts the binary and waits for it. Cancelling ctx interrupts it and
// kills the process if it is still running after a grace period.
func (l *ProcessLauncher) Run(ctx context.Context, network, dataDir string, port int) error {
	log := l.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir %s: %w", dataDir, err)
	}

	cmd := exec.CommandContext(ctx, l.Binary, Args(network, dataDir, port)...)
	cmd.Dir = dataDir
	cmd.Cancel = func() error {
		return interrupt(cmd.Process)
	}
	cmd.WaitDelay = stopGrace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to attach stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to attach stderr: %w", err)
	}

	log.Infow("Starting service", "binary", l.Binary, "network", network, "data_dir", dataDir, "port", port)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.Binary, err)
	}
	log.Infow("Service process started", "pid", cmd.Process.Pid)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); pipeLines(stdout, log, "stdout") }()
	go func() { defer wg.Done(); pipeLines(stderr, log, "stderr") }()
	wg.Wait()

	return cmd.Wait()
}

func pipeLines(r io.Reader, log *zap.SugaredLogger, stream string) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		log.Infow(scanner.Text(), "stream", stream)
	}
}

// FindBinary locates the service executable. A configured path wins;
// otherwise PATH, the shell's own directory and ./build are searched.
func FindBinary(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("configured service binary %s: %w", configured, err)
		}
		return configured, nil
	}

	if path, err := exec.LookPath(ServiceBinaryName); err == nil {
		return path, nil
	}

	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), executableName(ServiceBinaryName))
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	candidate := filepath.Join(".", "build", executableName(ServiceBinaryName))
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	return "", fmt.Errorf("%s not found. Install it or set service.binary in settings", ServiceBinaryName)
}
