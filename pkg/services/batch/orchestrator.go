// Package batch drives one logical extraction job: split the range into
// monthly periods, bind and execute each one, export what came back.
package batch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/geraldoaax/extract-fato-easymine/pkg/models/domain"
	"github.com/geraldoaax/extract-fato-easymine/pkg/services/binder"
	"github.com/geraldoaax/extract-fato-easymine/pkg/services/schedule"
	"github.com/geraldoaax/extract-fato-easymine/pkg/store/mssql"
	"github.com/rs/zerolog"
)

// ConnectionProvider hands out a scoped connection per executor invocation.
type ConnectionProvider interface {
	Acquire(ctx context.Context) (*sql.Conn, error)
}

// Exporter persists one rectangular result set as a spreadsheet file.
type Exporter interface {
	Export(rs domain.ResultSet, folder, filename string) (string, error)
}

type Orchestrator struct {
	provider ConnectionProvider
	exporter Exporter
}

func NewOrchestrator(provider ConnectionProvider, exporter Exporter) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		exporter: exporter,
	}
}

// Run executes the schema over every monthly period of the range,
// sequentially and in order, returning the artifacts actually produced.
// Binder, executor and export failures are per-period: logged and skipped.
// An invalid range or a connection failure aborts the run.
func (o *Orchestrator) Run(
	ctx context.Context,
	schema domain.ProcedureSchema,
	r domain.DateRange,
	overrides map[string]any,
) ([]domain.Artifact, error) {
	periods, err := schedule.Split(r)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	logger.Info().Str("procedure", schema.Name).Stringer("range", r).Msg("starting batch")

	var artifacts []domain.Artifact
	processed := 0
	for period := range periods {
		processed++
		plog := logger.With().Str("procedure", schema.Name).Stringer("period", period).Logger()

		artifact, err := o.runPeriod(plog.WithContext(ctx), schema, period, overrides)
		if err != nil {
			if errors.Is(err, mssql.ErrConnection) {
				return artifacts, err
			}
			plog.Error().Err(err).Msg("period failed, skipping")
			continue
		}
		if artifact != nil {
			plog.Info().Str("path", artifact.Path).Int("rows", artifact.Rows).Msg("artifact written")
			artifacts = append(artifacts, *artifact)
		}
	}

	logger.Info().
		Int("periods", processed).
		Int("artifacts", len(artifacts)).
		Msg("batch finished")
	return artifacts, nil
}

// runPeriod returns a nil artifact for an empty result set, which is a
// legitimate outcome and not an error.
func (o *Orchestrator) runPeriod(
	ctx context.Context,
	schema domain.ProcedureSchema,
	period domain.MonthlyPeriod,
	overrides map[string]any,
) (*domain.Artifact, error) {
	var args []any
	if !schema.RangedScan() {
		var err error
		args, err = binder.Bind(schema, period, overrides)
		if err != nil {
			return nil, err
		}
	}

	conn, err := o.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var rs domain.ResultSet
	if schema.RangedScan() {
		rs, err = mssql.ExecRangedScan(ctx, conn, schema.Table, schema.DateColumn, period)
	} else {
		rs, err = mssql.ExecProcedure(ctx, conn, schema.Name, args)
	}
	if err != nil {
		return nil, err
	}

	if rs.Empty() {
		zerolog.Ctx(ctx).Info().Msg("no data returned for period")
		return nil, nil
	}

	filename := fmt.Sprintf("%s_%s", schema.Name, period.Suffix())
	path, err := o.exporter.Export(rs, schema.OutputFolder, filename)
	if err != nil {
		return nil, fmt.Errorf("export failed: %w", err)
	}

	return &domain.Artifact{
		Procedure: schema.Name,
		Period:    period,
		Path:      path,
		Rows:      len(rs.Rows),
	}, nil
}
