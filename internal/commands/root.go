package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/gaborage/go-scriptkit/cache"
	"github.com/gaborage/go-scriptkit/config"
	"github.com/gaborage/go-scriptkit/http"
	"github.com/gaborage/go-scriptkit/logger"
	"github.com/gaborage/go-scriptkit/observability"
	"github.com/gaborage/go-scriptkit/report"
)

// annotationSkipConfig marks commands that run without loading configuration
const annotationSkipConfig = "scriptkit/skip-config"

// RootOptions holds the persistent flags shared by every command
type RootOptions struct {
	ConfigFile string
	EnvFile    string
	LogLevel   string
	Pretty     bool
	Trace      bool
	NoCache    bool

	fs      afero.Fs
	skipEnv bool
	// set by setup and released once the command returns
	tracing observability.Provider
	cache   cache.Cache
	log     logger.Logger
}

// app is the per-invocation state built before a command runs
type app struct {
	cfg     *config.Config
	log     logger.Logger
	fs      afero.Fs
	printer *report.Printer
	tracing observability.Provider
	cache   cache.Cache
}

type appKey struct{}

// NewRootCommand creates the scriptkit root command with all subcommands
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(version, &RootOptions{fs: afero.NewOsFs()})
}

func newRootCommand(version string, opts *RootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "scriptkit",
		Short: "Small automation tools for APIs, expenses and files",
		Long: `scriptkit bundles small automation utilities: API clients with retrying
requests (JSONPlaceholder, wttr.in, GitHub) and local analysers for expense
CSV files, directories and client portfolios.

Configuration is read from config.yaml, .env and the environment, in that
order of increasing priority.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.ConfigFile, "config", "c", config.DefaultConfigFile, "Configuration file")
	flags.StringVar(&opts.EnvFile, "env-file", config.DefaultEnvFile, "Dotenv file with secrets")
	flags.StringVarP(&opts.LogLevel, "log-level", "l", "", "Log level (debug, info, warn, error); overrides log.level")
	flags.BoolVar(&opts.Pretty, "pretty", false, "Human readable console logs")
	flags.BoolVar(&opts.Trace, "trace", false, "Record request spans; overrides trace.enabled")
	flags.BoolVar(&opts.NoCache, "no-cache", false, "Always call the APIs; overrides cache.backend")

	root.AddCommand(
		NewUsersCommand(),
		NewWeatherCommand(),
		NewGitHubCommand(),
		NewExpensesCommand(),
		NewFilesCommand(),
		NewPortfolioCommand(),
		NewEnvCommand(),
		NewConfigCommand(),
		NewVersionCommand(version),
	)
	return root
}

// Execute runs the root command with ctx. Recorded spans are flushed and the
// cache is closed even when the command fails. A cache close error is logged
// and never changes the command result.
func Execute(ctx context.Context, version string) error {
	opts := &RootOptions{fs: afero.NewOsFs()}
	return execute(ctx, newRootCommand(version, opts), opts)
}

func execute(ctx context.Context, root *cobra.Command, opts *RootOptions) error {
	err := root.ExecuteContext(ctx)
	if opts.cache != nil {
		if cerr := opts.cache.Close(); cerr != nil && opts.log != nil {
			opts.log.Warn().Err(cerr).Msg("Cache close failed")
		}
	}
	if opts.tracing != nil {
		err = errors.Join(err, observability.Shutdown(opts.tracing, observability.DefaultShutdownTimeout))
	}
	return err
}

func setup(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := &app{fs: opts.fs, printer: report.NewPrinter(cmd.OutOrStdout())}
	if cmd.Annotations[annotationSkipConfig] == "true" {
		a.log = logger.NewWithWriter(cmd.ErrOrStderr(), levelOr(opts.LogLevel, "info"), opts.Pretty)
		cmd.SetContext(context.WithValue(logger.WithLogger(ctx, a.log), appKey{}, a))
		return nil
	}

	cfg, err := config.LoadWithOptions(config.Options{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
		SkipEnv:    opts.skipEnv,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	pretty := cfg.Log.Pretty || opts.Pretty
	a.log = logger.NewWithWriter(cmd.ErrOrStderr(), levelOr(opts.LogLevel, cfg.Log.Level), pretty)
	opts.log = a.log

	traceCfg := cfg.ObservabilityConfig()
	traceCfg.Enabled = traceCfg.Enabled || opts.Trace
	traceCfg.Writer = cmd.ErrOrStderr()
	if traceCfg.Enabled {
		a.tracing, err = observability.NewProvider(&traceCfg)
		if err != nil {
			return err
		}
		opts.tracing = a.tracing
	}

	if !opts.NoCache {
		if a.cache, err = cfg.NewCache(); err != nil {
			a.log.Warn().Err(err).Str("backend", cfg.Cache.Backend).Msg("Cache unavailable, continuing without it")
			a.cache = nil
		}
		opts.cache = a.cache
	}

	a.log.Debug().
		Str("config_file", opts.ConfigFile).
		Str("env", cfg.App.Env).
		Str("cache", cfg.Cache.Backend).
		Msg("Configuration loaded")

	cmd.SetContext(context.WithValue(logger.WithLogger(ctx, a.log), appKey{}, a))
	return nil
}

func levelOr(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

func appFrom(cmd *cobra.Command) (*app, error) {
	if ctx := cmd.Context(); ctx != nil {
		if a, ok := ctx.Value(appKey{}).(*app); ok {
			return a, nil
		}
	}
	return nil, errors.New("command context is not initialized")
}

// executor builds a retrying executor for baseURL with logging and, when
// enabled, tracing observers attached. customize adds service specific settings.
func (a *app) executor(baseURL string, customize func(*http.Builder) *http.Builder) http.Executor {
	b := a.cfg.NewExecutorBuilder(baseURL, a.log)
	if a.tracing != nil {
		b = b.WithObserver(http.NewTracingObserver(a.tracing.TracerProvider()))
	}
	if customize != nil {
		b = customize(b)
	}
	return b.Build()
}

// argOr returns the first positional argument or fallback
func argOr(args []string, fallback string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return fallback
}

func writeLine(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
