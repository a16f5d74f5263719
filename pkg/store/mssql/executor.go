package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/geraldoaax/extract-fato-easymine/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Some procedures only accept date/time arguments as textual literals, so
// temporal values are pre-formatted before binding. The fallback call uses
// the shorter date-only form the routines accept in literal position.
const (
	bindTimeFormat    = "20060102 15:04:05"
	literalDateFormat = "20060102"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// literalValuePattern is the allow-list for string values interpolated by
// the fallback attempt. Anything outside it is refused rather than quoted.
var literalValuePattern = regexp.MustCompile(`^[\pL\pN _@.,:/'-]*$`)

// Querier is the subset of database/sql used by the executor. *sql.Conn,
// *sql.DB and *sql.Tx all satisfy it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ExecutionError reports that both the bound and the literal-fallback
// attempts failed for one call.
type ExecutionError struct {
	Target     string
	BoundErr   error
	LiteralErr error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing %s: bound attempt: %v; literal fallback: %v", e.Target, e.BoundErr, e.LiteralErr)
}

func (e *ExecutionError) Unwrap() []error {
	return []error{e.BoundErr, e.LiteralErr}
}

// ExecProcedure runs a stored routine with positional arguments using the
// two-attempt protocol: driver-level binding first, then a literal call
// built from quoted values if the bound call is rejected. Row-count
// messages are disabled up front so result retrieval is not disturbed.
func ExecProcedure(ctx context.Context, conn Querier, name string, args []any) (domain.ResultSet, error) {
	if !identPattern.MatchString(name) {
		return domain.ResultSet{}, fmt.Errorf("invalid procedure name %q", name)
	}
	logger := zerolog.Ctx(ctx)

	if _, err := conn.ExecContext(ctx, "SET NOCOUNT ON"); err != nil {
		return domain.ResultSet{}, fmt.Errorf("disable row count messages: %w", err)
	}

	call := buildCall(name, len(args))
	bound := bindArgs(args)
	logger.Debug().Str("query", call).Msg("executing routine")

	rows, boundErr := conn.QueryContext(ctx, call, bound...)
	if boundErr != nil {
		logger.Warn().Err(boundErr).Str("routine", name).Msg("bound execution rejected, retrying with literals")

		literalCall, err := buildLiteralCall(name, args)
		if err != nil {
			return domain.ResultSet{}, &ExecutionError{Target: name, BoundErr: boundErr, LiteralErr: err}
		}
		logger.Debug().Str("query", literalCall).Msg("executing literal fallback")

		var litErr error
		rows, litErr = conn.QueryContext(ctx, literalCall)
		if litErr != nil {
			return domain.ResultSet{}, &ExecutionError{Target: name, BoundErr: boundErr, LiteralErr: litErr}
		}
	}

	return collectRows(rows)
}

// ExecRangedScan runs a bounded read on a plain table, filtering dateColumn
// to the period, with the same bound-then-literal protocol.
func ExecRangedScan(ctx context.Context, conn Querier, table, dateColumn string, period domain.MonthlyPeriod) (domain.ResultSet, error) {
	if !identPattern.MatchString(table) {
		return domain.ResultSet{}, fmt.Errorf("invalid table name %q", table)
	}
	if !identPattern.MatchString(dateColumn) {
		return domain.ResultSet{}, fmt.Errorf("invalid date column %q", dateColumn)
	}
	logger := zerolog.Ctx(ctx)

	if _, err := conn.ExecContext(ctx, "SET NOCOUNT ON"); err != nil {
		return domain.ResultSet{}, fmt.Errorf("disable row count messages: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s BETWEEN @p1 AND @p2", table, dateColumn)
	start := period.Start.Format(bindTimeFormat)
	end := period.End.Format(bindTimeFormat)
	logger.Debug().Str("query", query).Str("start", start).Str("end", end).Msg("executing ranged scan")

	rows, boundErr := conn.QueryContext(ctx, query, start, end)
	if boundErr != nil {
		logger.Warn().Err(boundErr).Str("table", table).Msg("bound scan rejected, retrying with literals")

		literal := fmt.Sprintf("SELECT * FROM %s WHERE %s BETWEEN '%s' AND '%s'", table, dateColumn, start, end)
		var litErr error
		rows, litErr = conn.QueryContext(ctx, literal)
		if litErr != nil {
			return domain.ResultSet{}, &ExecutionError{Target: table, BoundErr: boundErr, LiteralErr: litErr}
		}
	}

	return collectRows(rows)
}

func buildCall(name string, argc int) string {
	if argc == 0 {
		return "EXEC " + name
	}
	placeholders := make([]string, argc)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("@p%d", i+1)
	}
	return fmt.Sprintf("EXEC %s %s", name, strings.Join(placeholders, ", "))
}

func bindArgs(args []any) []any {
	bound := make([]any, len(args))
	for i, a := range args {
		if t, ok := a.(time.Time); ok {
			bound[i] = t.Format(bindTimeFormat)
		} else {
			bound[i] = a
		}
	}
	return bound
}

func buildLiteralCall(name string, args []any) (string, error) {
	if len(args) == 0 {
		return "EXEC " + name, nil
	}
	literals := make([]string, len(args))
	for i, a := range args {
		lit, err := quoteLiteral(a)
		if err != nil {
			return "", err
		}
		literals[i] = lit
	}
	return fmt.Sprintf("EXEC %s %s", name, strings.Join(literals, ", ")), nil
}

// quoteLiteral renders one argument as SQL literal text. Strings have
// embedded quotes doubled and must stay within the allow-list; everything
// the schema did not type as text or time is stringified verbatim.
func quoteLiteral(v any) (string, error) {
	switch t := v.(type) {
	case time.Time:
		return "'" + t.Format(literalDateFormat) + "'", nil
	case string:
		if !literalValuePattern.MatchString(t) {
			return "", fmt.Errorf("value %q not allowed in literal position", t)
		}
		return "'" + strings.ReplaceAll(t, "'", "''") + "'", nil
	default:
		return fmt.Sprint(v), nil
	}
}

func collectRows(rows *sql.Rows) (domain.ResultSet, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return domain.ResultSet{}, fmt.Errorf("read result descriptor: %w", err)
	}
	if len(columns) == 0 {
		// no result descriptor reported; a legitimate no-data outcome
		return domain.ResultSet{}, nil
	}

	var collected [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return domain.ResultSet{}, fmt.Errorf("scan row: %w", err)
		}
		collected = append(collected, values)
	}
	if err := rows.Err(); err != nil {
		return domain.ResultSet{}, fmt.Errorf("read rows: %w", err)
	}

	return domain.ResultSet{Columns: columns, Rows: collected}, nil
}
