package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cfdshell/cfdshell/internal/config"
	"github.com/cfdshell/cfdshell/internal/logging"
	"github.com/cfdshell/cfdshell/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Edit shell settings",
	Long: `Edit ~/.cfdshell/settings.yaml interactively.

This allows you to modify:
  - Preferred service port and retry budget
  - Liveness probe timing
  - Start minimized
  - Log level

Press Enter to keep the current value for any setting. A running shell picks
up the log level and start-minimized changes immediately.`,
	RunE: runSettings,
}

func runSettings(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	changed, err := editSettings(bufio.NewReader(os.Stdin), os.Stdout, settings)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Println("\nNo changes made.")
		return nil
	}

	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println(render(styleSuccess, "\nSettings updated."))
	return nil
}

// editSettings prompts for every editable field and reports whether any
// value changed.
func editSettings(reader *bufio.Reader, out io.Writer, s *models.Settings) (bool, error) {
	changed := false

	port, err := promptInt(reader, out, "Preferred port", s.Service.PreferredPort, 1, 65535)
	if err != nil {
		return false, err
	}
	if port != s.Service.PreferredPort {
		s.Service.PreferredPort = port
		changed = true
	}

	retries, err := promptInt(reader, out, "Port retries", s.Service.PortRetries, 0, 100)
	if err != nil {
		return false, err
	}
	if retries != s.Service.PortRetries {
		s.Service.PortRetries = retries
		changed = true
	}

	initial, err := promptDuration(reader, out, "Initial probe timeout", s.Probe.InitialTimeout)
	if err != nil {
		return false, err
	}
	if initial != s.Probe.InitialTimeout {
		s.Probe.InitialTimeout = initial
		changed = true
	}

	minimized := promptYesNoWithCurrent(reader, out, "Start minimized?", s.Window.StartMinimized)
	if minimized != s.Window.StartMinimized {
		s.Window.StartMinimized = minimized
		changed = true
	}

	level := promptString(reader, out, "Log level", s.Log.Level)
	level = strings.ToLower(level)
	if level != s.Log.Level {
		if logging.ParseLevel(level).String() != level {
			return false, fmt.Errorf("invalid log level: %s (expected debug, info, warn or error)", level)
		}
		s.Log.Level = level
		changed = true
	}

	return changed, nil
}

func promptString(reader *bufio.Reader, out io.Writer, prompt, current string) string {
	fmt.Fprintf(out, "  %s [%s]: ", prompt, current)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(response)
	if response == "" {
		return current
	}
	return response
}

func promptInt(reader *bufio.Reader, out io.Writer, prompt string, current, min, max int) (int, error) {
	response := promptString(reader, out, prompt, strconv.Itoa(current))
	n, err := strconv.Atoi(response)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("invalid %s: %s (expected %d-%d)", strings.ToLower(prompt), response, min, max)
	}
	return n, nil
}

func promptDuration(reader *bufio.Reader, out io.Writer, prompt string, current time.Duration) (time.Duration, error) {
	response := promptString(reader, out, prompt, current.String())
	d, err := time.ParseDuration(response)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %s", strings.ToLower(prompt), response)
	}
	return d, nil
}

// promptYesNoWithCurrent prompts for a yes/no value showing the current value.
func promptYesNoWithCurrent(reader *bufio.Reader, out io.Writer, prompt string, current bool) bool {
	currentStr := "no"
	if current {
		currentStr = "yes"
	}

	fmt.Fprintf(out, "  %s [%s]: ", prompt, currentStr)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))

	if response == "" {
		return current
	}
	return response == "y" || response == "yes"
}
