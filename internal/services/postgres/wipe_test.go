package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tablesQueryPattern    = regexp.QuoteMeta("WHERE c.relkind IN ('r', 'p')")
	sequencesQueryPattern = regexp.QuoteMeta("WHERE c.relkind = 'S'")
)

func relationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"nspname", "relname"})
}

func newWipeService(t *testing.T) (*Impl, sqlmock.Sqlmock, *string) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	var gotDSN string
	svc := NewWithOpener(testLogger(), func(ctx context.Context, dsn string) (*sql.DB, error) {
		gotDSN = dsn
		return db, nil
	})
	return svc, mock, &gotDSN
}

func TestWipe_DropsTablesThenSequences(t *testing.T) {
	svc, mock, gotDSN := newWipeService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(tablesQueryPattern).
		WillReturnRows(relationRows().AddRow("public", "users").AddRow("public", `odd"name`))
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "public"."users" CASCADE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "public"."odd""name" CASCADE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(sequencesQueryPattern).
		WillReturnRows(relationRows().AddRow("public", "invoice_number_seq"))
	mock.ExpectExec(regexp.QuoteMeta(`DROP SEQUENCE IF EXISTS "public"."invoice_number_seq" CASCADE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectClose()

	result, err := svc.Wipe(context.Background(), testConfig(t))

	require.NoError(t, err)
	assert.Equal(t, 2, result.TablesDropped)
	assert.Equal(t, 1, result.SequencesDropped)
	assert.Equal(t, "dbname='testdb' user='tester' password='secret'", *gotDSN)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWipe_EmptySchemaIsNoop(t *testing.T) {
	svc, mock, _ := newWipeService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(tablesQueryPattern).WillReturnRows(relationRows())
	mock.ExpectQuery(sequencesQueryPattern).WillReturnRows(relationRows())
	mock.ExpectCommit()
	mock.ExpectClose()

	result, err := svc.Wipe(context.Background(), testConfig(t))

	require.NoError(t, err)
	assert.Zero(t, result.TablesDropped)
	assert.Zero(t, result.SequencesDropped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWipe_DropFailureRollsBack(t *testing.T) {
	svc, mock, _ := newWipeService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(tablesQueryPattern).WillReturnRows(relationRows().AddRow("public", "users"))
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "public"."users" CASCADE`)).
		WillReturnError(errors.New("permission denied for table users"))
	mock.ExpectRollback()
	mock.ExpectClose()

	result, err := svc.Wipe(context.Background(), testConfig(t))

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrWipe)
	assert.Contains(t, err.Error(), "permission denied for table users")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWipe_SequencePhaseFailureRollsBack(t *testing.T) {
	svc, mock, _ := newWipeService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(tablesQueryPattern).WillReturnRows(relationRows())
	mock.ExpectQuery(sequencesQueryPattern).WillReturnError(errors.New("canceling statement due to user request"))
	mock.ExpectRollback()
	mock.ExpectClose()

	_, err := svc.Wipe(context.Background(), testConfig(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWipe)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWipe_CommitFailure(t *testing.T) {
	svc, mock, _ := newWipeService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(tablesQueryPattern).WillReturnRows(relationRows())
	mock.ExpectQuery(sequencesQueryPattern).WillReturnRows(relationRows())
	mock.ExpectCommit().WillReturnError(errors.New("server closed the connection"))
	mock.ExpectClose()

	_, err := svc.Wipe(context.Background(), testConfig(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWipe)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWipe_ConnectionFailure(t *testing.T) {
	svc := NewWithOpener(testLogger(), func(ctx context.Context, dsn string) (*sql.DB, error) {
		return nil, errors.New(`pq: password authentication failed for user "tester"`)
	})

	_, err := svc.Wipe(context.Background(), testConfig(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.NotErrorIs(t, err, ErrWipe)
	assert.Contains(t, err.Error(), "password authentication failed")
}
