package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

const unknownVersion = "unknown"

type versionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version,omitempty"`
	Revision  string `json:"revision,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

var versionFormatFlag string

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the build version, VCS revision and Go version used to build keepgen.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := collectVersionInfo(debug.ReadBuildInfo())

			switch strings.ToLower(versionFormatFlag) {
			case "", "pretty":
				renderVersionPretty(cmd.OutOrStdout(), info)
				return nil
			case "json":
				return renderVersionJSON(cmd.OutOrStdout(), info)
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormatFlag)
			}
		},
	}

	cmd.Flags().StringVar(&versionFormatFlag, "format", "pretty", "output format (pretty|json)")

	return cmd
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}

func collectVersionInfo(build *debug.BuildInfo, ok bool) versionInfo {
	if !ok || build == nil {
		return versionInfo{Version: unknownVersion}
	}

	info := versionInfo{
		Version:   build.Main.Version,
		GoVersion: build.GoVersion,
	}

	if info.Version == "" {
		info.Version = unknownVersion
	}

	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.time":
			info.BuildDate = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}

	return info
}

func renderVersionPretty(w io.Writer, info versionInfo) {
	fmt.Fprintf(w, "keepgen version\t %s\n", info.Version)

	if info.GoVersion != "" {
		fmt.Fprintf(w, "go version\t %s\n", info.GoVersion)
	}

	if info.Revision != "" {
		revision := info.Revision
		if info.Modified {
			revision += " (modified)"
		}

		fmt.Fprintf(w, "revision\t %s\n", revision)
	}

	if info.BuildDate != "" {
		fmt.Fprintf(w, "build date\t %s\n", info.BuildDate)
	}
}

func renderVersionJSON(w io.Writer, info versionInfo) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(info)
}
