package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type PingCmd struct {
	provider ProviderFactory
}

func NewPingCmd(provider ProviderFactory) *cobra.Command {
	pc := &PingCmd{provider: provider}
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		RunE:  pc.run,
	}
}

func (pc *PingCmd) run(cmd *cobra.Command, _ []string) error {
	provider, err := pc.provider()
	if err != nil {
		return err
	}
	defer provider.Close()

	if err := provider.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Database connection established successfully.")
	return nil
}
