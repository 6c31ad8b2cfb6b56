package commands

import (
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command
func NewVersionCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Long:        "Display version information for scriptkit",
		Annotations: map[string]string{annotationSkipConfig: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			writeLine(w, "scriptkit version %s", version)
			writeLine(w, "Built with %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}

	return cmd
}
