package commands

import (
	"github.com/spf13/cobra"

	"github.com/gaborage/go-scriptkit/http"
	"github.com/gaborage/go-scriptkit/integrations/github"
)

// GitHubOptions holds options for the github command
type GitHubOptions struct {
	User string
}

// NewGitHubCommand creates the github command
func NewGitHubCommand() *cobra.Command {
	opts := &GitHubOptions{}

	cmd := &cobra.Command{
		Use:   "github",
		Short: "Show GitHub profile and repository statistics",
		Long: `Fetches a GitHub profile and its public repositories and prints the
top repositories by stars, total stars and forks, and languages used.

Set GITHUB_TOKEN for higher rate limits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGitHub(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "GitHub login (default github.user)")

	return cmd
}

func runGitHub(cmd *cobra.Command, opts *GitHubOptions) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	login := opts.User
	if login == "" {
		login = a.cfg.GitHub.User
	}

	client := github.NewClient(a.executor(a.cfg.GitHub.BaseURL, func(b *http.Builder) *http.Builder {
		return github.Configure(b, a.cfg.GitHub.Token)
	})).WithCache(a.cache, a.cfg.Cache.TTL)

	stats, err := client.Stats(cmd.Context(), login)
	if err != nil {
		return err
	}
	return a.printer.GitHub(stats)
}
