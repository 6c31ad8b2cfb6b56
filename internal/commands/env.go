package commands

import (
	"github.com/spf13/cobra"
)

// NewEnvCommand creates the env command
func NewEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show which secrets are configured, masked",
		Long: `Lists the credentials scriptkit reads from .env or the environment
(WEATHER_API_KEY, GITHUB_TOKEN). Only the last four characters are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			return a.printer.Secrets(a.cfg.Secrets())
		},
	}
}
