package supervisor

import "os"

func executableName(name string) string {
	return name + ".exe"
}

// interrupt stops the service. Windows has no SIGTERM for child processes.
func interrupt(p *os.Process) error {
	return p.Kill()
}
