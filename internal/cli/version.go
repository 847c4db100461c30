package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=v1.2.3".
var Version = "dev"

// VersionInfo is the payload of the version command.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print the version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{Version: Version, GoVersion: "unknown"}
			if bi, ok := debug.ReadBuildInfo(); ok {
				info.GoVersion = bi.GoVersion
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if rootOpts.Format == "json" {
				return formatter.Success(info)
			}
			return formatter.Success(fmt.Sprintf("salesmetrics %s (%s)", info.Version, info.GoVersion))
		},
	}
}
