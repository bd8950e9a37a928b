package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cfdshell/cfdshell/internal/buildinfo"
)

// VersionInfo holds version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Codename  string `json:"codename"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	Packaged  bool   `json:"packaged"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Go        string `json:"go"`
}

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersion()
		if versionJSON {
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("  %s %s %s\n",
			render(styleBrand, "cfdshell"),
			render(styleVersion, info.Version),
			render(styleHint, "("+info.Codename+")"),
		)
		fmt.Printf("    %s   %s\n", render(styleLabel, "Commit"), render(styleValue, info.Commit))
		fmt.Printf("    %s    %s\n", render(styleLabel, "Built"), render(styleValue, info.BuildDate))
		fmt.Printf("    %s %s\n", render(styleLabel, "Packaged"), render(styleValue, fmt.Sprint(info.Packaged)))
		fmt.Printf("    %s  %s\n", render(styleLabel, "OS/Arch"), render(styleValue, info.OS+"/"+info.Arch))
		fmt.Printf("    %s       %s\n", render(styleLabel, "Go"), render(styleValue, info.Go))
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print as JSON")
}

func currentVersion() VersionInfo {
	return VersionInfo{
		Version:   buildinfo.Version,
		Codename:  buildinfo.Codename,
		Commit:    buildinfo.CommitHash,
		BuildDate: buildinfo.BuildDate,
		Packaged:  buildinfo.IsPackaged(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Go:        runtime.Version(),
	}
}
