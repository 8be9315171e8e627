package terminal

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-sync/pkg/runtime/bootstrap"
	"github.com/de-tools/ledger-sync/pkg/runtime/terminal/commands"
	"github.com/de-tools/ledger-sync/pkg/runtime/terminal/export"
	"github.com/de-tools/ledger-sync/pkg/services/catalog"
	"github.com/de-tools/ledger-sync/pkg/services/config"
	"github.com/de-tools/ledger-sync/pkg/services/session"
)

// CLI represents the command-line interface
type CLI struct {
	opts     Options
	reporter *export.Reporter
	failures *FailureReporter
	rootCmd  *cobra.Command

	settingsPath string
	profile      string
	profilePath  string
	logLevel     string
}

// Options contain configuration for the CLI
type Options struct {
	Output      io.Writer
	Errors      io.Writer
	HostFactory session.HostFactory
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Errors == nil {
		opts.Errors = os.Stderr
	}

	cli := &CLI{
		opts:     opts,
		reporter: export.NewReporter(opts.Output),
		failures: NewFailureReporter(opts.Errors),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ledger-sync",
		Short:         "Extract accounting reports and snapshot them when they change",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&cli.settingsPath, "config", "c", "", "Path to the settings file (yaml, toml or json)")
	cmd.PersistentFlags().StringVarP(&cli.profile, "profile", "p", "", "Company profile name")
	cmd.PersistentFlags().StringVar(&cli.profilePath, "profiles", config.DefaultProfilePath(), "Path to the company profile registry")
	cmd.PersistentFlags().StringVar(&cli.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(commands.NewRunCmd(cli.load, cli.reporter, cli.failures))
	cmd.AddCommand(commands.NewScheduleCmd(cli.load))
	cmd.AddCommand(commands.NewRunsCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewBaselinesCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewExchangesCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewReportsCmd(catalog.Default(), cli.reporter))

	return cmd
}

func (cli *CLI) load(cmd *cobra.Command) (context.Context, *bootstrap.App, error) {
	settings, err := config.LoadSettings(cli.settingsPath)
	if err != nil {
		return nil, nil, err
	}
	if cli.profile != "" {
		settings.Host.Profile = cli.profile
	}

	level := settings.Log.Level
	if cli.logLevel != "" {
		level = cli.logLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := zerolog.New(cli.opts.Errors).Level(lvl).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	app, err := bootstrap.New(ctx, settings, bootstrap.Options{
		ProfilePath: cli.profilePath,
		HostFactory: cli.opts.HostFactory,
	})
	if err != nil {
		return nil, nil, err
	}
	return ctx, app, nil
}
