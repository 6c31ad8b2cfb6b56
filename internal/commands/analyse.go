package commands

import (
	"github.com/spf13/cobra"

	"github.com/gaborage/go-scriptkit/analysis"
)

// NewExpensesCommand creates the expenses command
func NewExpensesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "expenses [file]",
		Short: "Summarize an expense CSV file",
		Long: `Reads a CSV file with the columns Date, Category, Description and Amount
and prints totals per category. Rows with an invalid amount or date are
skipped and reported. The file defaults to expenses.file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			file, err := analysis.LoadExpenses(a.fs, argOr(args, a.cfg.Expenses.File))
			if err != nil {
				return err
			}
			a.log.Info().
				Str("file", file.Path).
				Int("records", len(file.Expenses)).
				Int("invalid_amounts", file.InvalidAmounts).
				Int("invalid_dates", file.InvalidDates).
				Msg("Expenses loaded")

			return a.printer.Expenses(file, analysis.SummarizeExpenses(file.Expenses))
		},
	}
}

// NewFilesCommand creates the files command
func NewFilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "files [dir]",
		Short: "Analyze the files in a directory",
		Long: `Counts the files directly inside a directory, groups them by extension
and reports the total and largest size. Hidden entries and subdirectories
are skipped. The directory defaults to files.dir.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			stats, err := analysis.AnalyzeDirectory(a.fs, argOr(args, a.cfg.Files.Dir))
			if err != nil {
				return err
			}
			return a.printer.Directory(stats)
		},
	}
}

// PortfolioOptions holds options for the portfolio command
type PortfolioOptions struct {
	Init bool
}

// NewPortfolioCommand creates the portfolio command
func NewPortfolioCommand() *cobra.Command {
	opts := &PortfolioOptions{}

	cmd := &cobra.Command{
		Use:   "portfolio [file]",
		Short: "Report the ROI of a client's automation projects",
		Example: `  # Write the sample client file, then report on it
  scriptkit portfolio --init
  scriptkit portfolio client_data.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			path := argOr(args, a.cfg.Portfolio.File)

			if opts.Init {
				if err := analysis.SavePortfolio(a.fs, path, analysis.SamplePortfolio()); err != nil {
					return err
				}
				a.log.Info().Str("file", path).Msg("Sample client data written")
			}

			client, err := analysis.LoadPortfolio(a.fs, path)
			if err != nil {
				return err
			}
			return a.printer.Portfolio(analysis.AnalyzePortfolio(*client))
		},
	}

	cmd.Flags().BoolVar(&opts.Init, "init", false, "Write the sample client data to the file first")

	return cmd
}
