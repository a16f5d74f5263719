package mssql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/geraldoaax/extract-fato-easymine/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPeriod = domain.MonthlyPeriod{
	Start: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC),
}

func newMock(t *testing.T) (sqlmock.Sqlmock, Querier) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, db
}

func TestExecProcedure_Bound(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectExec("SET NOCOUNT ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("EXEC fato.ciclodetalhado @p1, @p2").
		WithArgs("20250301 00:00:00", "20250331 23:59:59").
		WillReturnRows(sqlmock.NewRows([]string{"id", "valor"}).
			AddRow(int64(1), 10.5).
			AddRow(int64(2), 20.0))

	rs, err := ExecProcedure(context.Background(), db, "fato.ciclodetalhado",
		[]any{testPeriod.Start, testPeriod.End})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "valor"}, rs.Columns)
	require.Len(t, rs.Rows, 2)
	assert.False(t, rs.Empty())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecProcedure_ZeroRowsIsEmptyNotError(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectExec("SET NOCOUNT ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("EXEC fato.ciclodetalhado @p1, @p2").
		WithArgs("20250301 00:00:00", "20250331 23:59:59").
		WillReturnRows(sqlmock.NewRows([]string{"id", "valor"}))

	rs, err := ExecProcedure(context.Background(), db, "fato.ciclodetalhado",
		[]any{testPeriod.Start, testPeriod.End})
	require.NoError(t, err)
	assert.True(t, rs.Empty())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecProcedure_NoDescriptorIsEmpty(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectExec("SET NOCOUNT ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("EXEC fato.semretorno").
		WillReturnRows(sqlmock.NewRows([]string{}))

	rs, err := ExecProcedure(context.Background(), db, "fato.semretorno", nil)
	require.NoError(t, err)
	assert.True(t, rs.Empty())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecProcedure_LiteralFallback(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectExec("SET NOCOUNT ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("EXEC fato.ciclodetalhado @p1, @p2, @p3").
		WithArgs("20250301 00:00:00", "20250331 23:59:59", 5).
		WillReturnError(errors.New("the driver rejected the parameters"))
	mock.ExpectQuery("EXEC fato.ciclodetalhado '20250301', '20250331', 5").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	rs, err := ExecProcedure(context.Background(), db, "fato.ciclodetalhado",
		[]any{testPeriod.Start, testPeriod.End, 5})
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecProcedure_BothAttemptsFail(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectExec("SET NOCOUNT ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("EXEC fato.ciclodetalhado @p1, @p2").
		WithArgs("20250301 00:00:00", "20250331 23:59:59").
		WillReturnError(errors.New("bound rejected"))
	mock.ExpectQuery("EXEC fato.ciclodetalhado '20250301', '20250331'").
		WillReturnError(errors.New("literal rejected"))

	_, err := ExecProcedure(context.Background(), db, "fato.ciclodetalhado",
		[]any{testPeriod.Start, testPeriod.End})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "fato.ciclodetalhado", execErr.Target)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecProcedure_RejectsBadName(t *testing.T) {
	_, db := newMock(t)
	_, err := ExecProcedure(context.Background(), db, "fato.x; DROP TABLE y", nil)
	assert.Error(t, err)
}

func TestExecRangedScan_Bound(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectExec("SET NOCOUNT ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT * FROM fato.apontamentos WHERE Data BETWEEN @p1 AND @p2").
		WithArgs("20250301 00:00:00", "20250331 23:59:59").
		WillReturnRows(sqlmock.NewRows([]string{"Data", "valor"}).
			AddRow(testPeriod.Start, 1.0))

	rs, err := ExecRangedScan(context.Background(), db, "fato.apontamentos", "Data", testPeriod)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecRangedScan_LiteralFallback(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectExec("SET NOCOUNT ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT * FROM fato.apontamentos WHERE Data BETWEEN @p1 AND @p2").
		WithArgs("20250301 00:00:00", "20250331 23:59:59").
		WillReturnError(errors.New("bound rejected"))
	mock.ExpectQuery("SELECT * FROM fato.apontamentos WHERE Data BETWEEN '20250301 00:00:00' AND '20250331 23:59:59'").
		WillReturnRows(sqlmock.NewRows([]string{"Data"}).AddRow(testPeriod.Start))

	rs, err := ExecRangedScan(context.Background(), db, "fato.apontamentos", "Data", testPeriod)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectRows_DescriptorFailureIsError(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery("SELECT 1").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(1)))

	rows, err := db.QueryContext(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, rows.Close())

	// a result set that cannot report its columns is a retrieval failure,
	// not a no-data outcome
	_, err = collectRows(rows)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteLiteral(t *testing.T) {
	t.Run("doubles embedded quotes", func(t *testing.T) {
		got, err := quoteLiteral("O'Brien")
		require.NoError(t, err)
		assert.Equal(t, "'O''Brien'", got)
	})

	t.Run("dates use compact form", func(t *testing.T) {
		got, err := quoteLiteral(time.Date(2025, time.March, 1, 10, 30, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "'20250301'", got)
	})

	t.Run("ints pass verbatim", func(t *testing.T) {
		got, err := quoteLiteral(42)
		require.NoError(t, err)
		assert.Equal(t, "42", got)
	})

	t.Run("refuses values outside the allow-list", func(t *testing.T) {
		_, err := quoteLiteral("x'; DROP TABLE usuarios; --")
		assert.Error(t, err)
	})
}

func TestBuildCall(t *testing.T) {
	assert.Equal(t, "EXEC fato.resumo", buildCall("fato.resumo", 0))
	assert.Equal(t, "EXEC fato.resumo @p1, @p2, @p3", buildCall("fato.resumo", 3))
}
