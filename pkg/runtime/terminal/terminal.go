package terminal

import (
	"context"
	"io"
	"os"

	"github.com/geraldoaax/extract-fato-easymine/pkg/runtime/terminal/commands"
	"github.com/geraldoaax/extract-fato-easymine/pkg/runtime/terminal/export"
	"github.com/geraldoaax/extract-fato-easymine/pkg/store/mssql"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	provider commands.ProviderFactory
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Provider commands.ProviderFactory
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Provider == nil {
		opts.Provider = defaultProvider
	}

	cli := &CLI{
		provider: opts.Provider,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Execute SQL Server procedures per month and export results to Excel",
	}

	cmd.AddCommand(commands.NewRunCmd(cli.provider, cli.reporter))
	cmd.AddCommand(commands.NewListCmd())
	cmd.AddCommand(commands.NewPingCmd(cli.provider))

	return cmd
}

func defaultProvider() (*mssql.Provider, error) {
	cfg, err := mssql.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return mssql.NewProvider(cfg)
}
