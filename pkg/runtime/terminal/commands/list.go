package commands

import (
	"fmt"
	"strings"

	"github.com/geraldoaax/extract-fato-easymine/pkg/services/config"
	"github.com/spf13/cobra"
)

type ListCmd struct {
	configPath string
}

func NewListCmd() *cobra.Command {
	lc := &ListCmd{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured procedures",
		RunE:  lc.run,
	}

	cmd.Flags().StringVarP(&lc.configPath, "config", "c", "config/procedures.yaml", "Path to the procedure configuration file")

	return cmd
}

func (lc *ListCmd) run(cmd *cobra.Command, _ []string) error {
	registry, err := config.NewRegistry(lc.configPath)
	if err != nil {
		return fmt.Errorf("failed to load procedure config: %w", err)
	}

	procedures := registry.Procedures()
	if len(procedures) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No procedures configured.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configured procedures:\n%s\n",
		strings.Join(procedures, "\n"))

	return nil
}
