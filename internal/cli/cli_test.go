package cli

import (
	"bufio"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfdshell/cfdshell/internal/config"
	apperrors "github.com/cfdshell/cfdshell/internal/errors"
	"github.com/cfdshell/cfdshell/internal/models"
)

func TestApplyFlagOverrides(t *testing.T) {
	t.Cleanup(func() { runFlags = shellFlags{} })

	cmd := &cobra.Command{Use: "test"}
	registerRunFlags(cmd)
	require.NoError(t, cmd.Flags().Set("port", "9000"))
	require.NoError(t, cmd.Flags().Set("start-minimized", "true"))
	require.NoError(t, cmd.Flags().Set("log-level", "debug"))

	s := models.NewSettings()
	s.Service.Binary = "/opt/taker"
	applyFlagOverrides(cmd, s)

	assert.Equal(t, 9000, s.Service.PreferredPort)
	assert.True(t, s.Window.StartMinimized)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "/opt/taker", s.Service.Binary, "unset flags keep settings")
	assert.Empty(t, s.Metrics.Address)
}

func TestWithFlagOverrides_SurviveReload(t *testing.T) {
	t.Cleanup(func() { runFlags = shellFlags{} })

	cmd := &cobra.Command{Use: "test"}
	registerRunFlags(cmd)
	require.NoError(t, cmd.Flags().Set("start-minimized", "true"))
	require.NoError(t, cmd.Flags().Set("log-level", "warn"))

	var got *models.Settings
	onReload := withFlagOverrides(cmd, func(s *models.Settings) { got = s })

	reloaded := models.NewSettings()
	reloaded.Log.Level = "debug"
	reloaded.Service.PortRetries = 7
	onReload(reloaded)

	require.NotNil(t, got)
	assert.True(t, got.Window.StartMinimized)
	assert.Equal(t, "warn", got.Log.Level)
	assert.Equal(t, 7, got.Service.PortRetries)
}

func TestClaimSession(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	env := config.Environment{Network: config.NetworkTestnet, DataDir: t.TempDir()}

	session, err := claimSession("run-1", env)
	require.NoError(t, err)
	assert.Zero(t, session.Port)

	stored, err := config.LoadSession()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "run-1", stored.RunID)
	assert.Zero(t, stored.Port)

	// The file now names a live PID, so a second start is refused before
	// any port is allocated.
	_, err = claimSession("run-2", env)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRunning)

	stored, err = config.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "run-1", stored.RunID)
}

func TestEditSettings_KeepsDefaultsOnEnter(t *testing.T) {
	s := models.NewSettings()
	changed, err := editSettings(bufio.NewReader(strings.NewReader("\n\n\n\n\n")), io.Discard, s)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.NewSettings(), s)
}

func TestEditSettings_AppliesChanges(t *testing.T) {
	s := models.NewSettings()
	input := "8123\n5\n250ms\ny\nDEBUG\n"
	changed, err := editSettings(bufio.NewReader(strings.NewReader(input)), io.Discard, s)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 8123, s.Service.PreferredPort)
	assert.Equal(t, 5, s.Service.PortRetries)
	assert.Equal(t, 250*time.Millisecond, s.Probe.InitialTimeout)
	assert.True(t, s.Window.StartMinimized)
	assert.Equal(t, "debug", s.Log.Level)
}

func TestEditSettings_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"port out of range", "70000\n"},
		{"port not a number", "abc\n"},
		{"negative retries", "\n-1\n"},
		{"bad duration", "\n\nsoon\n"},
		{"unknown log level", "\n\n\n\nverbose\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := editSettings(bufio.NewReader(strings.NewReader(tt.input)), io.Discard, models.NewSettings())
			assert.Error(t, err)
		})
	}
}

func TestPromptYesNoWithCurrent(t *testing.T) {
	read := func(s string) *bufio.Reader { return bufio.NewReader(strings.NewReader(s)) }

	assert.True(t, promptYesNoWithCurrent(read("\n"), io.Discard, "q", true))
	assert.False(t, promptYesNoWithCurrent(read("no\n"), io.Discard, "q", true))
	assert.True(t, promptYesNoWithCurrent(read("YES\n"), io.Discard, "q", false))
}

func TestCurrentVersion(t *testing.T) {
	info := currentVersion()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.OS)
	assert.False(t, info.Packaged)
}
