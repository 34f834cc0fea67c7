package sqltest

import (
	"context"
	"errors"
	"testing"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vippsas/sqlbatch"
)

func Test_RunScript(t *testing.T) {
	f := NewFixture(t)
	defer f.Teardown()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	for _, wrap := range []bool{true, false} {
		f.resetSchema(t, ctx)
		err := f.RunScript(ctx, "create.sql", sqlbatch.Options{
			Variables: map[string]string{"TableName": "Thing", "Label": "first"},
			Wrap:      wrap,
		})
		require.NoError(t, err)

		var label string
		require.NoError(t, f.DB.QueryRowContext(ctx, `select label from test.Thing where id = 1`).Scan(&label))
		assert.Equal(t, "it's first", label)
		require.NoError(t, f.DB.QueryRowContext(ctx, `select label from test.Thing where id = 2`).Scan(&label))
		assert.Equal(t, "[bracket] -- not a comment", label)
	}
}

func Test_RunScript_Failure(t *testing.T) {
	f := NewFixture(t)
	defer f.Teardown()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	t.Run("wrapped", func(t *testing.T) {
		err := f.RunScript(ctx, "failing.sql", sqlbatch.Options{Wrap: true})
		require.Error(t, err)

		var sqlerr mssql.Error
		require.True(t, errors.As(err, &sqlerr))
		assert.Equal(t, int32(8134), sqlerr.Number) // divide by zero
		assert.True(t, f.tableExists(t, ctx, "BeforeFailure"))
		assert.False(t, f.tableExists(t, ctx, "AfterFailure"))
	})

	t.Run("batch by batch", func(t *testing.T) {
		_, err := f.DB.ExecContext(ctx, `drop table dbo.BeforeFailure`)
		require.NoError(t, err)

		err = f.RunScript(ctx, "failing.sql", sqlbatch.Options{})
		var usererr sqlbatch.MSSQLUserError
		require.True(t, errors.As(err, &usererr))
		assert.Equal(t, 3, usererr.Batch.StartPos.Line)
		assert.Equal(t, "select 1/0 as DivideByZero;\n", usererr.Batch.Lines)
		assert.Contains(t, usererr.Error(), "failing.sql:3")
		assert.False(t, f.tableExists(t, ctx, "AfterFailure"))
	})
}

func (f *Fixture) resetSchema(t *testing.T, ctx context.Context) {
	_, err := f.DB.ExecContext(ctx, `
if object_id('test.Thing') is not null drop table test.Thing;
if schema_id('test') is not null exec('drop schema test');
`)
	require.NoError(t, err)
}

func (f *Fixture) tableExists(t *testing.T, ctx context.Context, name string) bool {
	var id *int64
	require.NoError(t, f.DB.QueryRowContext(ctx, `select object_id(@p1)`, "dbo."+name).Scan(&id))
	return id != nil
}
