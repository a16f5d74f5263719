package commands

import (
	"fmt"
	"strings"

	"github.com/geraldoaax/extract-fato-easymine/pkg/export/excel"
	"github.com/geraldoaax/extract-fato-easymine/pkg/models/domain"
	"github.com/geraldoaax/extract-fato-easymine/pkg/runtime/terminal/export"
	"github.com/geraldoaax/extract-fato-easymine/pkg/services/batch"
	"github.com/geraldoaax/extract-fato-easymine/pkg/services/config"
	"github.com/geraldoaax/extract-fato-easymine/pkg/services/schedule"
	"github.com/geraldoaax/extract-fato-easymine/pkg/store/mssql"
	"github.com/spf13/cobra"
)

// ProviderFactory defers building the connection provider until a command
// actually needs the database.
type ProviderFactory func() (*mssql.Provider, error)

type RunCmd struct {
	configPath string
	outputDir  string
	procedure  string
	start      string
	end        string
	params     []string
	provider   ProviderFactory
	reporter   *export.Reporter
}

func NewRunCmd(provider ProviderFactory, reporter *export.Reporter) *cobra.Command {
	rc := &RunCmd{provider: provider, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a configured procedure over a date range, one export per month",
		RunE:  rc.run,
	}

	cmd.Flags().StringVarP(&rc.configPath, "config", "c", "config/procedures.yaml", "Path to the procedure configuration file")
	cmd.Flags().StringVarP(&rc.outputDir, "output", "o", "output", "Base directory for generated files")
	cmd.Flags().StringVarP(&rc.procedure, "procedure", "p", "", "Name of the procedure to execute")
	cmd.Flags().StringVarP(&rc.start, "start", "s", "", "Start date in YYYYMMDD format")
	cmd.Flags().StringVarP(&rc.end, "end", "e", "", "End date in YYYYMMDD format (inclusive)")
	cmd.Flags().StringArrayVarP(&rc.params, "param", "P", nil, "Extra parameter as key=value, repeatable")

	_ = cmd.MarkFlagRequired("procedure")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func (rc *RunCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	registry, err := config.NewRegistry(rc.configPath)
	if err != nil {
		return fmt.Errorf("failed to load procedure config: %w", err)
	}

	schema, err := registry.Get(rc.procedure)
	if err != nil {
		return fmt.Errorf("%w\navailable procedures:\n  %s",
			err, strings.Join(registry.Procedures(), "\n  "))
	}

	start, err := schedule.ParseDate(rc.start)
	if err != nil {
		return err
	}
	endDay, err := schedule.ParseDate(rc.end)
	if err != nil {
		return err
	}
	end := schedule.EndOfDay(endDay)
	if start.After(end) {
		return fmt.Errorf("start date %s is after end date %s", rc.start, rc.end)
	}

	overrides, err := ParseParams(rc.params)
	if err != nil {
		return err
	}

	provider, err := rc.provider()
	if err != nil {
		return err
	}
	defer provider.Close()

	orch := batch.NewOrchestrator(provider, excel.NewExporter(rc.outputDir))
	artifacts, err := orch.Run(ctx, schema, domain.DateRange{Start: start, End: end}, overrides)
	if err != nil {
		return err
	}

	return rc.reporter.Handle(&domain.RunSummary{
		Procedure: schema.Name,
		Range:     domain.DateRange{Start: start, End: end},
		Artifacts: artifacts,
	})
}
