package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cfdshell/cfdshell/internal/buildinfo"
)

// Network identifiers passed to the service.
const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
)

// DevEnv forces development mode when set to "1" or "true".
const DevEnv = "CFDSHELL_DEV"

// Environment is the resolved process environment for one shell run.
type Environment struct {
	Packaged bool
	Network  string
	DataDir  string
}

// IsPackaged reports whether the shell runs as an installed application.
// The --dev flag and CFDSHELL_DEV both force development mode.
func IsPackaged(devFlag bool) bool {
	if devFlag {
		return false
	}
	switch os.Getenv(DevEnv) {
	case "1", "true":
		return false
	}
	return buildinfo.IsPackaged()
}

// ResolveEnvironment picks the network and the service data directory.
// Packaged: <UserConfigDir>/cfdshell/mainnet. Development: ~/.cfdshell/dev/testnet.
func ResolveEnvironment(packaged bool) (Environment, error) {
	env := Environment{Packaged: packaged}

	if packaged {
		base, err := os.UserConfigDir()
		if err != nil {
			return Environment{}, fmt.Errorf("failed to resolve user config dir: %w", err)
		}
		env.Network = NetworkMainnet
		env.DataDir = filepath.Join(base, AppName, NetworkMainnet)
		return env, nil
	}

	dir, err := GlobalDir()
	if err != nil {
		return Environment{}, err
	}
	env.Network = NetworkTestnet
	env.DataDir = filepath.Join(dir, DevDirName, NetworkTestnet)
	return env, nil
}

// EnsureDataDir creates the service data directory if it doesn't exist.
func (e Environment) EnsureDataDir() error {
	return os.MkdirAll(e.DataDir, 0755)
}
