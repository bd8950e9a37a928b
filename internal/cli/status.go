package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cfdshell/cfdshell/internal/config"
	"github.com/cfdshell/cfdshell/internal/probe"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running shell and service",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsShellRunning()
	if err != nil {
		return fmt.Errorf("failed to check shell status: %w", err)
	}

	if !running || info == nil {
		fmt.Println(render(styleHint, "cfdshell is not running."))
		return nil
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), settings.Probe.RequestTimeout)
	defer cancel()
	checker := &probe.HTTPChecker{Client: probe.NewHTTPClient(settings.Probe.RequestTimeout)}
	url := probe.URL(info.Host, info.Port)

	service := render(styleSuccess, "reachable")
	if info.Port == 0 {
		url = "-"
		service = render(styleHint, "starting, no port yet")
	} else if err := checker.Check(ctx, url); err != nil {
		service = render(styleWarning, "not reachable")
	}

	fmt.Println(render(styleSuccess, "cfdshell is running."))
	printField("PID", fmt.Sprint(info.PID))
	printField("Run ID", info.RunID)
	printField("Network", info.Network)
	printField("Data dir", info.DataDir)
	printField("URL", url)
	printField("Service", service)
	printField("Uptime", time.Since(info.StartedAt).Truncate(time.Second).String())
	return nil
}

func printField(label, value string) {
	fmt.Printf("  %s %s\n", render(styleLabel, fmt.Sprintf("%-9s", label+":")), render(styleValue, value))
}
