//go:build !windows

package supervisor

import (
	"os"
	"syscall"
)

func executableName(name string) string {
	return name
}

// interrupt asks the service to shut down gracefully.
func interrupt(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
