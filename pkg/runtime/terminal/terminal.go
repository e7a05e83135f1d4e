package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/tco-atlas/pkg/runtime/app"
	"github.com/de-tools/tco-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/tco-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/tco-atlas/pkg/services/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// AppFactory builds the application from a loaded config.
type AppFactory func(ctx context.Context, cfg config.Config, opts app.Options) (*app.App, error)

// CLI represents the command-line interface
type CLI struct {
	configPath string
	logger     zerolog.Logger
	newApp     AppFactory
	reporter   *export.Reporter
	rootCmd    *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	Logger zerolog.Logger
	// NewApp defaults to app.New.
	NewApp AppFactory
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.NewApp == nil {
		opts.NewApp = app.New
	}

	cli := &CLI{
		logger:   opts.Logger,
		newApp:   opts.NewApp,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// ExecuteContext runs the command tree with the given arguments. Used in tests.
func (cli *CLI) ExecuteContext(ctx context.Context, args ...string) error {
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tco",
		Short:         "Monthly infrastructure cost estimation across clouds, Kubernetes and on-prem",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(cli.logger.WithContext(cmd.Context()))
		},
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "", "Path to the YAML config file")

	cmd.AddCommand(commands.NewEstimateCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewTargetsCmd(cli.load))
	cmd.AddCommand(commands.NewCatalogCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewPricesCmd(cli.load, cli.reporter))

	return cmd
}

func (cli *CLI) load(ctx context.Context, opts app.Options) (*app.App, error) {
	cfg, err := config.Load(cli.configPath)
	if err != nil {
		return nil, err
	}

	return cli.newApp(ctx, *cfg, opts)
}
